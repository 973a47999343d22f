package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LedgerTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Committed ledger transactions",
		},
		[]string{"kind"}, // credit|debit
	)
	LedgerTransactionsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_transactions_failed_total",
			Help: "Rejected or failed ledger mutations",
		},
	)

	RateLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_lookups_total",
			Help: "Exchange rate lookups by result",
		},
		[]string{"result"}, // hit|miss|error
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current background worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(LedgerTransactionsTotal)
	prometheus.MustRegister(LedgerTransactionsFailed)
	prometheus.MustRegister(RateLookupsTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}

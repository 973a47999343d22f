package services

import (
	"context"
	"errors"

	"github.com/ejdotp/digiWallet/internal/metrics"
	"github.com/ejdotp/digiWallet/internal/models"
	"github.com/ejdotp/digiWallet/internal/rates"
	repo "github.com/ejdotp/digiWallet/internal/repository"
	"github.com/ejdotp/digiWallet/internal/worker"
)

// conflictRetries bounds how often a serialization failure is retried before
// it surfaces to the client.
const conflictRetries = 3

// LedgerService composes the ledger, catalog and user lookups into the fund,
// pay and buy use cases. Each mutation is one atomic storage transaction.
type LedgerService struct {
	ledger   repo.Ledger
	users    repo.Users
	products repo.Products
	audit    repo.AuditLogs
	rates    rates.Source
	native   string
	wp       *worker.Pool
}

func NewLedgerService(l repo.Ledger, u repo.Users, p repo.Products, a repo.AuditLogs, rs rates.Source, nativeCurrency string, wp *worker.Pool) *LedgerService {
	return &LedgerService{ledger: l, users: u, products: p, audit: a, rates: rs, native: nativeCurrency, wp: wp}
}

func (s *LedgerService) withRetry(fn func() error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		if err = fn(); !errors.Is(err, models.ErrTransientConflict) {
			return err
		}
	}
	return err
}

func (s *LedgerService) auditLog(userID, action string, details map[string]any) {
	if s.audit == nil {
		return
	}
	uid := userID
	s.wp.Submit(func() {
		_ = s.audit.Create(context.Background(), models.AuditLog{
			EntityType: "ledger",
			EntityID:   &uid,
			Action:     action,
			Details:    details,
		})
	})
}

// Fund credits the user's account and returns the new balance.
func (s *LedgerService) Fund(ctx context.Context, userID string, amount int64) (int64, error) {
	var txn models.Transaction
	err := s.withRetry(func() error {
		var err error
		txn, err = s.ledger.Credit(ctx, userID, amount)
		return err
	})
	if err != nil {
		metrics.LedgerTransactionsFailed.Inc()
		return 0, err
	}
	metrics.LedgerTransactionsTotal.WithLabelValues(string(models.TxnCredit)).Inc()
	s.auditLog(userID, "fund", map[string]any{"amount": amount})
	return txn.BalanceAfter, nil
}

// Pay transfers amount from the sender to the named recipient and returns the
// sender's new balance.
func (s *LedgerService) Pay(ctx context.Context, senderID, recipientUsername string, amount int64) (int64, error) {
	recipient, err := s.users.GetByUsername(ctx, recipientUsername)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return 0, models.ErrRecipientNotFound
		}
		return 0, err
	}

	var debit, credit models.Transaction
	err = s.withRetry(func() error {
		var err error
		debit, credit, err = s.ledger.Transfer(ctx, senderID, recipient.ID, amount)
		return err
	})
	if err != nil {
		metrics.LedgerTransactionsFailed.Inc()
		return 0, err
	}
	metrics.LedgerTransactionsTotal.WithLabelValues(string(models.TxnDebit)).Inc()
	metrics.LedgerTransactionsTotal.WithLabelValues(string(models.TxnCredit)).Inc()
	s.auditLog(senderID, "pay", map[string]any{"to": recipient.ID, "amount": amount})

	// On a self-pay the credit row carries the sender's final balance.
	if recipient.ID == senderID {
		return credit.BalanceAfter, nil
	}
	return debit.BalanceAfter, nil
}

// Buy debits the product's price from the buyer. The funds check and the
// debit run against one consistent balance snapshot inside the ledger.
func (s *LedgerService) Buy(ctx context.Context, userID, productID string) (models.Product, int64, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return models.Product{}, 0, err
	}

	var debit models.Transaction
	err = s.withRetry(func() error {
		var err error
		debit, err = s.ledger.Debit(ctx, userID, p.Price)
		return err
	})
	if err != nil {
		metrics.LedgerTransactionsFailed.Inc()
		return models.Product{}, 0, err
	}
	metrics.LedgerTransactionsTotal.WithLabelValues(string(models.TxnDebit)).Inc()
	s.auditLog(userID, "buy", map[string]any{"product_id": p.ID, "price": p.Price})
	return p, debit.BalanceAfter, nil
}

// Balance returns the user's balance, converted when currency differs from
// the native unit.
func (s *LedgerService) Balance(ctx context.Context, userID, currency string) (float64, string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, "", err
	}
	if currency == "" || currency == s.native {
		return float64(u.Balance), s.native, nil
	}
	rate, err := s.rates.Rate(ctx, currency)
	if err != nil {
		return 0, "", err
	}
	return float64(u.Balance) * rate, currency, nil
}

func (s *LedgerService) Statement(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.ledger.Statement(ctx, userID)
}

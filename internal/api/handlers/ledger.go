package handlers

import (
	"net/http"
	"time"

	"github.com/ejdotp/digiWallet/internal/api/httpx"
)

func (h *Handlers) Fund(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req fundReq
	if !decode(w, r, &req) {
		return
	}
	balance, err := h.Ledger.Fund(r.Context(), uid, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (h *Handlers) Pay(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req payReq
	if !decode(w, r, &req) {
		return
	}
	balance, err := h.Ledger.Pay(r.Context(), uid, req.To, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (h *Handlers) Balance(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	balance, currency, err := h.Ledger.Balance(r.Context(), uid, r.URL.Query().Get("currency"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"balance": balance, "currency": currency})
}

func (h *Handlers) Statement(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	txns, err := h.Ledger.Statement(r.Context(), uid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]statementEntry, 0, len(txns))
	for _, t := range txns {
		out = append(out, statementEntry{
			Kind:       string(t.Kind),
			Amt:        t.Amount,
			UpdatedBal: t.BalanceAfter,
			Timestamp:  t.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) Buy(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req buyReq
	if !decode(w, r, &req) {
		return
	}
	_, balance, err := h.Ledger.Buy(r.Context(), uid, req.ProductID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Product purchased", "balance": balance})
}

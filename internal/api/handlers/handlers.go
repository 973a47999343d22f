package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ejdotp/digiWallet/internal/api/httpx"
	"github.com/ejdotp/digiWallet/internal/api/validate"
	"github.com/ejdotp/digiWallet/internal/middleware"
	"github.com/ejdotp/digiWallet/internal/models"
	"github.com/ejdotp/digiWallet/internal/rates"
	"github.com/ejdotp/digiWallet/internal/services"
)

type Handlers struct {
	Users   *services.UserService
	Ledger  *services.LedgerService
	Catalog *services.CatalogService
}

func New(us *services.UserService, ls *services.LedgerService, cs *services.CatalogService) *Handlers {
	return &Handlers{Users: us, Ledger: ls, Catalog: cs}
}

// decode parses the body into dst and runs its validate tags. On failure it
// has already written the 400.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var fields validate.Errs
		if errors.As(err, &fields) {
			httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "validation failed", fields)
		} else {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
	}
	return uid, ok
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
	case errors.Is(err, models.ErrDuplicateUsername):
		httpx.WriteError(w, http.StatusBadRequest, "duplicate_username", "username already exists", nil)
	case errors.Is(err, models.ErrRecipientNotFound):
		httpx.WriteError(w, http.StatusBadRequest, "recipient_not_found", "recipient not found", nil)
	case errors.Is(err, models.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusBadRequest, "insufficient_funds", "insufficient funds", nil)
	case errors.Is(err, models.ErrProductNotFound):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_purchase", "invalid product", nil)
	case errors.Is(err, models.ErrInvalidAmount):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", "amount must be > 0", nil)
	case errors.Is(err, models.ErrTransientConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", "concurrent update, retry", nil)
	case errors.Is(err, rates.ErrUnknownCurrency), errors.Is(err, rates.ErrUnavailable):
		httpx.WriteError(w, http.StatusBadGateway, "rate_unavailable", "currency conversion unavailable", nil)
	default:
		slog.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

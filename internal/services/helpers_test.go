package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ejdotp/digiWallet/internal/auth"
	"github.com/ejdotp/digiWallet/internal/models"
	"github.com/ejdotp/digiWallet/internal/repository/repotest"
	"github.com/ejdotp/digiWallet/internal/services"
	"github.com/ejdotp/digiWallet/internal/worker"
	"github.com/stretchr/testify/require"
)

type stubRates struct {
	rate float64
	err  error
}

func (s stubRates) Rate(ctx context.Context, code string) (float64, error) {
	return s.rate, s.err
}

// flakyLedger fails the first failures mutations with a conflict, then
// delegates to the real store.
type flakyLedger struct {
	*repotest.Store
	failures int
	attempts int
}

func (l *flakyLedger) Credit(ctx context.Context, userID string, amount int64) (models.Transaction, error) {
	l.attempts++
	if l.attempts <= l.failures {
		return models.Transaction{}, models.ErrTransientConflict
	}
	return l.Store.Credit(ctx, userID, amount)
}

type env struct {
	store   *repotest.Store
	users   *services.UserService
	ledger  *services.LedgerService
	catalog *services.CatalogService
	wp      *worker.Pool
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := repotest.NewStore()
	tm := auth.NewTokenManager("test-secret", "digiwallet", time.Minute)
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)

	return &env{
		store:   store,
		users:   services.NewUserService(store, tm),
		ledger:  services.NewLedgerService(store, store, store.ProductsRepo(), store.AuditRepo(), stubRates{rate: 2}, "INR", wp),
		catalog: services.NewCatalogService(store.ProductsRepo()),
		wp:      wp,
	}
}

func (e *env) register(t *testing.T, username string) models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), username, "password123")
	require.NoError(t, err)
	return u
}

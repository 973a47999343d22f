package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ejdotp/digiWallet/internal/models"
	"github.com/ejdotp/digiWallet/internal/repository/repotest"
	"github.com/ejdotp/digiWallet/internal/services"
	"github.com/ejdotp/digiWallet/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlakyLedger(t *testing.T, failures int) (*flakyLedger, *services.LedgerService, *repotest.Store) {
	t.Helper()
	store := repotest.NewStore()
	fl := &flakyLedger{Store: store, failures: failures}
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)
	ls := services.NewLedgerService(fl, store, store.ProductsRepo(), store.AuditRepo(), stubRates{rate: 1}, "INR", wp)
	return fl, ls, store
}

func TestFundRetriesTransientConflicts(t *testing.T) {
	ctx := context.Background()
	fl, ls, store := newFlakyLedger(t, 2)
	u, err := store.Create(ctx, "alice", "hash")
	require.NoError(t, err)

	bal, err := ls.Fund(ctx, u.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)
	assert.Equal(t, 3, fl.attempts)
}

func TestFundSurfacesConflictWhenRetriesExhaust(t *testing.T) {
	ctx := context.Background()
	fl, ls, store := newFlakyLedger(t, 10)
	u, err := store.Create(ctx, "alice", "hash")
	require.NoError(t, err)

	_, err = ls.Fund(ctx, u.ID, 100)
	assert.ErrorIs(t, err, models.ErrTransientConflict)
	assert.Equal(t, 3, fl.attempts)

	stmt, err := ls.Statement(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, stmt)
}

func TestFundAccumulates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	bal, err := e.ledger.Fund(ctx, u.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)

	bal, err = e.ledger.Fund(ctx, u.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(350), bal)
}

func TestFundRejectsNonPositiveAmount(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice")

	_, err := e.ledger.Fund(context.Background(), u.ID, 0)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	_, err = e.ledger.Fund(context.Background(), u.ID, -5)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestPayMovesFundsAndWritesBothRows(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	_, err := e.ledger.Fund(ctx, alice.ID, 500)
	require.NoError(t, err)
	_, err = e.ledger.Fund(ctx, bob.ID, 40)
	require.NoError(t, err)

	bal, err := e.ledger.Pay(ctx, alice.ID, "bob", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), bal)

	aliceStmt, err := e.ledger.Statement(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceStmt, 2)
	assert.Equal(t, models.TxnDebit, aliceStmt[0].Kind)
	assert.Equal(t, int64(200), aliceStmt[0].Amount)
	assert.Equal(t, int64(300), aliceStmt[0].BalanceAfter)

	bobStmt, err := e.ledger.Statement(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobStmt, 2)
	assert.Equal(t, models.TxnCredit, bobStmt[0].Kind)
	assert.Equal(t, int64(200), bobStmt[0].Amount)
	assert.Equal(t, int64(240), bobStmt[0].BalanceAfter)
}

func TestPayToSelfKeepsBalance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	_, err := e.ledger.Fund(ctx, alice.ID, 100)
	require.NoError(t, err)

	// A self-pay nets to zero: the reported balance is the final one,
	// and both rows land in the statement with correct snapshots.
	bal, err := e.ledger.Pay(ctx, alice.ID, "alice", 40)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)

	stmt, err := e.ledger.Statement(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, stmt, 3)
	assert.Equal(t, models.TxnCredit, stmt[0].Kind)
	assert.Equal(t, int64(100), stmt[0].BalanceAfter)
	assert.Equal(t, models.TxnDebit, stmt[1].Kind)
	assert.Equal(t, int64(60), stmt[1].BalanceAfter)

	cur, _, err := e.ledger.Balance(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Equal(t, float64(100), cur)
}

func TestPayUnknownRecipient(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	_, err := e.ledger.Fund(ctx, alice.ID, 100)
	require.NoError(t, err)

	_, err = e.ledger.Pay(ctx, alice.ID, "ghost", 50)
	assert.ErrorIs(t, err, models.ErrRecipientNotFound)

	// Nothing moved.
	bal, _, err := e.ledger.Balance(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Equal(t, float64(100), bal)
}

func TestPayInsufficientFundsLeavesLedgerUntouched(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	_, err := e.ledger.Fund(ctx, alice.ID, 30)
	require.NoError(t, err)

	_, err = e.ledger.Pay(ctx, alice.ID, "bob", 50)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	aliceStmt, err := e.ledger.Statement(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceStmt, 1) // only the fund
	bobStmt, err := e.ledger.Statement(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobStmt)
}

func TestConcurrentPaysSpendBalanceOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	_, err := e.ledger.Fund(ctx, alice.ID, 100)
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.ledger.Pay(ctx, alice.ID, "bob", 100)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, models.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 1, ok)

	bal, _, err := e.ledger.Balance(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Equal(t, float64(0), bal)
	bobBal, _, err := e.ledger.Balance(ctx, bob.ID, "")
	require.NoError(t, err)
	assert.Equal(t, float64(100), bobBal)
}

func TestBuy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")
	_, err := e.ledger.Fund(ctx, u.ID, 1000)
	require.NoError(t, err)

	p, err := e.catalog.Add(ctx, "Book", 400, "paperback")
	require.NoError(t, err)

	bought, bal, err := e.ledger.Buy(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, bought.ID)
	assert.Equal(t, int64(600), bal)

	stmt, err := e.ledger.Statement(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, stmt, 2)
	assert.Equal(t, models.TxnDebit, stmt[0].Kind)
	assert.Equal(t, int64(400), stmt[0].Amount)
}

func TestBuyUnknownProduct(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice")

	_, _, err := e.ledger.Buy(context.Background(), u.ID, "missing-id")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestBuyInsufficientFunds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")
	_, err := e.ledger.Fund(ctx, u.ID, 100)
	require.NoError(t, err)
	p, err := e.catalog.Add(ctx, "Book", 400, "")
	require.NoError(t, err)

	_, _, err = e.ledger.Buy(ctx, u.ID, p.ID)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	// Balance and log unchanged.
	bal, _, err := e.ledger.Balance(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, float64(100), bal)
	stmt, err := e.ledger.Statement(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, stmt, 1)
}

func TestStatementOrderAndRunningSum(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")

	for _, amt := range []int64{100, 50, 25} {
		_, err := e.ledger.Fund(ctx, u.ID, amt)
		require.NoError(t, err)
	}
	p, err := e.catalog.Add(ctx, "Thing", 60, "")
	require.NoError(t, err)
	_, _, err = e.ledger.Buy(ctx, u.ID, p.ID)
	require.NoError(t, err)

	stmt, err := e.ledger.Statement(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, stmt, 4)

	// Newest first, timestamps non-increasing.
	for i := 1; i < len(stmt); i++ {
		assert.False(t, stmt[i].CreatedAt.After(stmt[i-1].CreatedAt))
	}

	// Replaying oldest-to-newest reconstructs every snapshot and the
	// final balance.
	var running int64
	for i := len(stmt) - 1; i >= 0; i-- {
		if stmt[i].Kind == models.TxnCredit {
			running += stmt[i].Amount
		} else {
			running -= stmt[i].Amount
		}
		assert.Equal(t, stmt[i].BalanceAfter, running)
		assert.GreaterOrEqual(t, running, int64(0))
	}
	bal, _, err := e.ledger.Balance(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, float64(running), bal)
}

func TestBalanceCurrencyConversion(t *testing.T) {
	e := newEnv(t) // stub rate is 2
	ctx := context.Background()
	u := e.register(t, "alice")
	_, err := e.ledger.Fund(ctx, u.ID, 150)
	require.NoError(t, err)

	bal, cur, err := e.ledger.Balance(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "INR", cur)
	assert.Equal(t, float64(150), bal)

	bal, cur, err = e.ledger.Balance(ctx, u.ID, "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD", cur)
	assert.Equal(t, float64(300), bal)
}

func TestFundWritesAuditLog(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice")
	_, err := e.ledger.Fund(ctx, u.ID, 100)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(e.store.Audits()) == 1
	}, time.Second, 5*time.Millisecond)
	a := e.store.Audits()[0]
	assert.Equal(t, "fund", a.Action)
	require.NotNil(t, a.EntityID)
	assert.Equal(t, u.ID, *a.EntityID)
}

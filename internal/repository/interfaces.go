package repository

import (
	"context"

	"github.com/ejdotp/digiWallet/internal/models"
)

type Users interface {
	Create(ctx context.Context, username, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

// Ledger owns balances and the append-only transaction log. Every mutating
// call runs as one serializable database transaction: the balance read, the
// balance write and the transaction row(s) commit together or not at all.
type Ledger interface {
	Credit(ctx context.Context, userID string, amount int64) (models.Transaction, error)
	Debit(ctx context.Context, userID string, amount int64) (models.Transaction, error)
	// Transfer debits from and credits to as one unit, returning the two
	// rows it wrote (debit first).
	Transfer(ctx context.Context, fromID, toID string, amount int64) (models.Transaction, models.Transaction, error)
	// Statement lists a user's transactions newest first; same-timestamp
	// rows keep insertion order.
	Statement(ctx context.Context, userID string) ([]models.Transaction, error)
}

type Products interface {
	Create(ctx context.Context, name string, price int64, description string) (models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

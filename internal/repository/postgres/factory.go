package postgres

import (
	repo "github.com/ejdotp/digiWallet/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users     repo.Users
	Ledger    repo.Ledger
	Products  repo.Products
	AuditLogs repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:     &usersRepo{pool},
		Ledger:    &ledgerRepo{pool},
		Products:  &productsRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}

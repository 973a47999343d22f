package postgres

import (
	"context"

	"github.com/ejdotp/digiWallet/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ledgerRepo struct{ pool *pgxpool.Pool }

// withTx runs fn inside one serializable transaction and maps serialization
// failures to models.ErrTransientConflict on every exit path.
func (r *ledgerRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return mapConflict(err)
	}
	return mapConflict(tx.Commit(ctx))
}

// lockBalance reads a user's balance under FOR UPDATE so concurrent mutations
// of the same account serialize on the row.
func lockBalance(ctx context.Context, tx pgx.Tx, userID string) (int64, error) {
	var bal int64
	err := tx.QueryRow(ctx, `SELECT balance FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&bal)
	if isNoRows(err) {
		return 0, models.ErrUserNotFound
	}
	return bal, err
}

func setBalance(ctx context.Context, tx pgx.Tx, userID string, bal int64) error {
	_, err := tx.Exec(ctx, `UPDATE users SET balance=$2 WHERE id=$1`, userID, bal)
	return err
}

func insertTxn(ctx context.Context, tx pgx.Tx, userID string, kind models.TransactionKind, amount, balanceAfter int64) (models.Transaction, error) {
	t := models.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
	err := tx.QueryRow(ctx,
		`INSERT INTO transactions(id, user_id, kind, amount, balance_after)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING seq, created_at`,
		t.ID, t.UserID, t.Kind, t.Amount, t.BalanceAfter,
	).Scan(&t.Seq, &t.CreatedAt)
	return t, err
}

func (r *ledgerRepo) Credit(ctx context.Context, userID string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, models.ErrInvalidAmount
	}
	var out models.Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		bal, err := lockBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		bal += amount
		if err := setBalance(ctx, tx, userID, bal); err != nil {
			return err
		}
		out, err = insertTxn(ctx, tx, userID, models.TxnCredit, amount, bal)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return out, nil
}

func (r *ledgerRepo) Debit(ctx context.Context, userID string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, models.ErrInvalidAmount
	}
	var out models.Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		bal, err := lockBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if bal < amount {
			return models.ErrInsufficientFunds
		}
		bal -= amount
		if err := setBalance(ctx, tx, userID, bal); err != nil {
			return err
		}
		out, err = insertTxn(ctx, tx, userID, models.TxnDebit, amount, bal)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return out, nil
}

func (r *ledgerRepo) Transfer(ctx context.Context, fromID, toID string, amount int64) (models.Transaction, models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, models.Transaction{}, models.ErrInvalidAmount
	}
	var debit, credit models.Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		// Lock both rows in id order so two opposite transfers cannot
		// deadlock. from==to degenerates to a single lock.
		first, second := fromID, toID
		if second < first {
			first, second = second, first
		}
		balances := map[string]int64{}
		b, err := lockBalance(ctx, tx, first)
		if err != nil {
			return err
		}
		balances[first] = b
		if second != first {
			if b, err = lockBalance(ctx, tx, second); err != nil {
				return err
			}
			balances[second] = b
		}

		if balances[fromID] < amount {
			return models.ErrInsufficientFunds
		}
		// Apply the debit before the credit so each row's balance_after
		// is the running sum at that point, also when from==to.
		afterDebit := balances[fromID] - amount
		balances[fromID] = afterDebit
		afterCredit := balances[toID] + amount
		balances[toID] = afterCredit

		for id, bal := range balances {
			if err := setBalance(ctx, tx, id, bal); err != nil {
				return err
			}
		}
		if debit, err = insertTxn(ctx, tx, fromID, models.TxnDebit, amount, afterDebit); err != nil {
			return err
		}
		credit, err = insertTxn(ctx, tx, toID, models.TxnCredit, amount, afterCredit)
		return err
	})
	if err != nil {
		return models.Transaction{}, models.Transaction{}, err
	}
	return debit, credit, nil
}

func (r *ledgerRepo) Statement(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, kind, amount, balance_after, seq, created_at
		   FROM transactions
		  WHERE user_id=$1
		  ORDER BY created_at DESC, seq DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.Amount, &t.BalanceAfter, &t.Seq, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

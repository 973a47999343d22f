package models

import "time"

type TransactionKind string

const (
	TxnCredit TransactionKind = "credit"
	TxnDebit  TransactionKind = "debit"
)

// Transaction is one immutable entry in a user's ledger. BalanceAfter is a
// snapshot of the owner's balance immediately after the entry was applied,
// written in the same database transaction as the balance update itself.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Kind         TransactionKind `json:"kind"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	Seq          int64           `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}

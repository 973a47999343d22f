package models

import "errors"

// Business-rule errors. Handlers map these to HTTP statuses with errors.Is;
// everything else is a server error.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidAmount      = errors.New("amount must be > 0")

	// ErrTransientConflict signals a serialization failure on a concurrent
	// balance update. The ledger service retries a bounded number of times
	// before letting it reach the client as a 409.
	ErrTransientConflict = errors.New("concurrent update conflict, retry")
)

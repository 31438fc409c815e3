package models

import "errors"

// Domain errors. Handlers translate these to HTTP statuses with errors.Is;
// everything else is treated as a storage failure.
var (
	// ErrAccountNotFound covers both a missing account and an account that
	// exists but is not owned by the requester.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountInactive means the source or destination account is not in
	// the active status.
	ErrAccountInactive = errors.New("account is not active")

	// ErrInvalidAmount means the amount is not positive or carries more
	// fractional digits than balances support.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds means the debit would make the balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStorage wraps any persistence failure. The surrounding unit of
	// work is always rolled back before it is returned.
	ErrStorage = errors.New("storage failure")

	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

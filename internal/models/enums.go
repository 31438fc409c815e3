package models

import "fmt"

// Account types, account statuses and transaction kinds are closed sets.
// They are parsed once at the request boundary; domain code only ever sees
// the typed constants.

type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
	AccountTypeBusiness AccountType = "business"
)

func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeBusiness:
		return t, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
	AccountStatusFrozen   AccountStatus = "frozen"
)

func ParseAccountStatus(s string) (AccountStatus, error) {
	switch st := AccountStatus(s); st {
	case AccountStatusActive, AccountStatusInactive, AccountStatusFrozen:
		return st, nil
	}
	return "", fmt.Errorf("unknown account status %q", s)
}

type TransactionKind string

const (
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdrawal TransactionKind = "withdrawal"
	TransactionTransfer   TransactionKind = "transfer"
)

func ParseTransactionKind(s string) (TransactionKind, error) {
	switch k := TransactionKind(s); k {
	case TransactionDeposit, TransactionWithdrawal, TransactionTransfer:
		return k, nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

// Debits reports whether the kind removes funds from the source account.
func (k TransactionKind) Debits() bool {
	return k == TransactionWithdrawal || k == TransactionTransfer
}

type TransactionStatus string

// TransactionStatusReversed is defined for schema compatibility with the
// upstream data model but no code path produces it.
const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

package cqrs

import (
	"github.com/kestrelbank/kestrel/internal/models"
	"github.com/shopspring/decimal"
)

type RegisterUserCommand struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
}

type LoginCommand struct {
	Email    string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}

type OpenAccountCommand struct {
	OwnerID string
	Type    models.AccountType
}

type UpdateAccountStatusCommand struct {
	OwnerID       string
	AccountNumber string
	Status        models.AccountStatus
}

// ExecuteTransactionCommand carries one balance-affecting operation.
// DestinationAccountNumber is consulted only when Kind is transfer.
type ExecuteTransactionCommand struct {
	Kind                     models.TransactionKind
	SourceAccountNumber      string
	DestinationAccountNumber string
	Amount                   decimal.Decimal
	Description              string
	OwnerID                  string
}

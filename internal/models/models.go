package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	CreatedAt    time.Time `json:"createdTimestamp"`
	UpdatedAt    time.Time `json:"updatedTimestamp"`
}

type Account struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	OwnerID       string          `json:"-"`
	Type          AccountType     `json:"type"`
	Status        AccountStatus   `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"createdTimestamp"`
	UpdatedAt     time.Time       `json:"updatedTimestamp"`
}

// Transaction is a single immutable ledger record. DestinationAccountID is
// set only for transfers. Seq is assigned by the database and gives a strict
// creation order even when two records share a timestamp.
type Transaction struct {
	ID                   string            `json:"id"`
	Seq                  int64             `json:"-"`
	Amount               decimal.Decimal   `json:"amount"`
	Kind                 TransactionKind   `json:"kind"`
	Status               TransactionStatus `json:"status"`
	Description          string            `json:"description,omitempty"`
	SourceAccountID      string            `json:"sourceAccountId"`
	DestinationAccountID string            `json:"destinationAccountId,omitempty"`
	CreatedAt            time.Time         `json:"createdTimestamp"`
}

// AccountView is the cached read-model projection of an account. Unlike
// Account it serialises the owner id, so ownership checks can be answered
// from the cache alone.
type AccountView struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	OwnerID       string          `json:"ownerId"`
	Type          AccountType     `json:"type"`
	Status        AccountStatus   `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	UpdatedAt     time.Time       `json:"updatedTimestamp"`
}

func NewAccountView(a *Account) *AccountView {
	return &AccountView{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		OwnerID:       a.OwnerID,
		Type:          a.Type,
		Status:        a.Status,
		Balance:       a.Balance,
		UpdatedAt:     a.UpdatedAt,
	}
}

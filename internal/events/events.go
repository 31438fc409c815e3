package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	UserRegistered       = "user.registered"
	AccountOpened        = "account.opened"
	AccountStatusChanged = "account.status_changed"
	TransactionCompleted = "transaction.completed"
)

// Stream names
const (
	UserEventsStream        = "user.events"
	AccountEventsStream     = "account.events"
	TransactionEventsStream = "transaction.events"
)

// Event is the envelope written to the Redis stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type UserRegisteredEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type AccountOpenedEvent struct {
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	OwnerID       string `json:"ownerId"`
	AccountType   string `json:"accountType"`
}

type AccountStatusChangedEvent struct {
	AccountNumber string `json:"accountNumber"`
	OwnerID       string `json:"ownerId"`
	Status        string `json:"status"`
}

// TransactionCompletedEvent is published only after the unit of work has
// committed; consumers never observe a transaction that later rolled back.
type TransactionCompletedEvent struct {
	TransactionID        string          `json:"transactionId"`
	Kind                 string          `json:"kind"`
	Amount               decimal.Decimal `json:"amount"`
	SourceAccountID      string          `json:"sourceAccountId"`
	DestinationAccountID string          `json:"destinationAccountId,omitempty"`
	OwnerID              string          `json:"ownerId"`
}

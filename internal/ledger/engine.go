// Package ledger holds the transaction core: the Engine validates and
// applies balance-affecting operations atomically, and the QueryService
// serves read-only projections of committed state.
package ledger

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kestrelbank/kestrel/internal/cqrs"
	"github.com/kestrelbank/kestrel/internal/events"
	"github.com/kestrelbank/kestrel/internal/models"
	"github.com/kestrelbank/kestrel/internal/storage"
	"github.com/kestrelbank/kestrel/internal/utils"
)

// AccountStore is the account persistence contract the engine writes
// through. ApplyDelta must fail with models.ErrInsufficientFunds rather than
// ever letting a balance go negative.
type AccountStore interface {
	GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	GetByOwnerAndNumber(ctx context.Context, ownerID, accountNumber string) (*models.Account, error)
	ApplyDelta(ctx context.Context, uow storage.UnitOfWork, accountID string, delta decimal.Decimal) error
}

// TransactionLedger appends immutable records inside the caller's unit of
// work.
type TransactionLedger interface {
	Append(ctx context.Context, uow storage.UnitOfWork, t *models.Transaction) error
}

// Transactor runs a function inside one atomic unit of work.
type Transactor interface {
	Transact(ctx context.Context, fn func(storage.UnitOfWork) error) error
}

// ViewInvalidator drops cached projections of accounts whose balances
// changed. Called only after commit.
type ViewInvalidator interface {
	InvalidateView(ctx context.Context, accountNumber string)
}

// EventPublisher emits post-commit notifications. Failures never affect the
// committed transaction.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// Engine is the transfer engine. It is the only code path that mutates
// balances or appends ledger records.
type Engine struct {
	db        Transactor
	accounts  AccountStore
	ledger    TransactionLedger
	views     ViewInvalidator
	publisher EventPublisher
}

func NewEngine(db Transactor, accounts AccountStore, ledger TransactionLedger, views ViewInvalidator, publisher EventPublisher) *Engine {
	return &Engine{db: db, accounts: accounts, ledger: ledger, views: views, publisher: publisher}
}

// delta is one signed balance adjustment of the unit of work.
type delta struct {
	accountID     string
	accountNumber string
	amount        decimal.Decimal
}

// Execute validates and applies one deposit, withdrawal or transfer.
//
// Preconditions are checked on fresh reads before anything is written; a
// validation failure leaves no trace in the ledger. The record append and
// every balance delta then commit as a single unit of work, so no reader
// ever observes a debit without its paired credit. A debit that a
// concurrent operation has raced is caught by the store's balance guard and
// aborts the whole unit with ErrInsufficientFunds.
func (e *Engine) Execute(ctx context.Context, cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) {
	source, err := e.accounts.GetByOwnerAndNumber(ctx, cmd.OwnerID, cmd.SourceAccountNumber)
	if err != nil {
		return nil, err
	}
	if source.Status != models.AccountStatusActive {
		return nil, models.ErrAccountInactive
	}

	var destination *models.Account
	if cmd.Kind == models.TransactionTransfer {
		// Destination is looked up by number alone: transfers to another
		// user's account are allowed.
		destination, err = e.accounts.GetByNumber(ctx, cmd.DestinationAccountNumber)
		if err != nil {
			return nil, err
		}
		if destination.Status != models.AccountStatusActive {
			return nil, models.ErrAccountInactive
		}
	}

	if err := models.ValidateAmount(cmd.Amount); err != nil {
		return nil, err
	}
	if cmd.Kind.Debits() && source.Balance.LessThan(cmd.Amount) {
		return nil, models.ErrInsufficientFunds
	}

	transaction := &models.Transaction{
		ID:              utils.GenerateID("tan"),
		Amount:          cmd.Amount,
		Kind:            cmd.Kind,
		Status:          models.TransactionStatusCompleted,
		Description:     cmd.Description,
		SourceAccountID: source.ID,
		CreatedAt:       time.Now().UTC(),
	}
	if destination != nil {
		transaction.DestinationAccountID = destination.ID
	}

	deltas := balanceDeltas(cmd.Kind, cmd.Amount, source, destination)

	err = e.db.Transact(ctx, func(uow storage.UnitOfWork) error {
		if err := e.ledger.Append(ctx, uow, transaction); err != nil {
			return err
		}
		for _, d := range deltas {
			if err := e.accounts.ApplyDelta(ctx, uow, d.accountID, d.amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The record is durable at this point; a client disconnect must not skip
	// the view invalidation and leave a stale cached balance behind.
	e.afterCommit(context.WithoutCancel(ctx), cmd.OwnerID, transaction, deltas)
	return transaction, nil
}

// balanceDeltas maps an operation onto signed adjustments, ordered by
// account id so two opposing transfers acquire row locks in the same order
// and cannot deadlock.
func balanceDeltas(kind models.TransactionKind, amount decimal.Decimal, source, destination *models.Account) []delta {
	var deltas []delta
	switch kind {
	case models.TransactionDeposit:
		deltas = []delta{{source.ID, source.AccountNumber, amount}}
	case models.TransactionWithdrawal:
		deltas = []delta{{source.ID, source.AccountNumber, amount.Neg()}}
	case models.TransactionTransfer:
		deltas = []delta{
			{source.ID, source.AccountNumber, amount.Neg()},
			{destination.ID, destination.AccountNumber, amount},
		}
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].accountID < deltas[j].accountID })
	return deltas
}

// afterCommit refreshes read models and publishes the completion event.
// The transaction is already durable; failures here are logged and dropped.
func (e *Engine) afterCommit(ctx context.Context, ownerID string, t *models.Transaction, deltas []delta) {
	for _, d := range deltas {
		e.views.InvalidateView(ctx, d.accountNumber)
	}
	err := e.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionCompleted, events.TransactionCompletedEvent{
		TransactionID:        t.ID,
		Kind:                 string(t.Kind),
		Amount:               t.Amount,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		OwnerID:              ownerID,
	})
	if err != nil {
		slog.Warn("failed to publish transaction.completed event", "transactionId", t.ID, "error", err)
	}
}

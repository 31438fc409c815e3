// Package account implements account CRUD. It never touches balances; all
// balance movement goes through the ledger engine.
package account

import (
	"context"
	"log/slog"

	"github.com/kestrelbank/kestrel/internal/cqrs"
	"github.com/kestrelbank/kestrel/internal/events"
	"github.com/kestrelbank/kestrel/internal/models"
)

// Store is the subset of the account repository this service needs.
type Store interface {
	Create(ctx context.Context, ownerID string, accountType models.AccountType) (*models.Account, error)
	GetByOwnerAndNumber(ctx context.Context, ownerID, accountNumber string) (*models.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error)
	UpdateStatus(ctx context.Context, ownerID, accountNumber string, status models.AccountStatus) (*models.Account, error)
}

type ViewInvalidator interface {
	InvalidateView(ctx context.Context, accountNumber string)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type Service struct {
	store     Store
	views     ViewInvalidator
	publisher EventPublisher
}

func NewService(store Store, views ViewInvalidator, publisher EventPublisher) *Service {
	return &Service{store: store, views: views, publisher: publisher}
}

// Open creates a new active account with a zero balance and a freshly
// allocated account number.
func (s *Service) Open(ctx context.Context, cmd cqrs.OpenAccountCommand) (*models.Account, error) {
	account, err := s.store.Create(ctx, cmd.OwnerID, cmd.Type)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountOpened, events.AccountOpenedEvent{
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		OwnerID:       account.OwnerID,
		AccountType:   string(account.Type),
	}); err != nil {
		slog.Warn("failed to publish account.opened event", "accountNumber", account.AccountNumber, "error", err)
	}
	return account, nil
}

func (s *Service) Get(ctx context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	return s.store.GetByOwnerAndNumber(ctx, q.OwnerID, q.AccountNumber)
}

func (s *Service) List(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.Account, error) {
	return s.store.ListByOwner(ctx, q.OwnerID)
}

// UpdateStatus transitions an owned account between active, inactive and
// frozen, and drops the stale cached projection.
func (s *Service) UpdateStatus(ctx context.Context, cmd cqrs.UpdateAccountStatusCommand) (*models.Account, error) {
	account, err := s.store.UpdateStatus(ctx, cmd.OwnerID, cmd.AccountNumber, cmd.Status)
	if err != nil {
		return nil, err
	}
	// The row is committed; a client disconnect must not skip the
	// invalidation.
	ctx = context.WithoutCancel(ctx)
	s.views.InvalidateView(ctx, account.AccountNumber)
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, events.AccountStatusChanged, events.AccountStatusChangedEvent{
		AccountNumber: account.AccountNumber,
		OwnerID:       account.OwnerID,
		Status:        string(account.Status),
	}); err != nil {
		slog.Warn("failed to publish account.status_changed event", "accountNumber", account.AccountNumber, "error", err)
	}
	return account, nil
}

package ledger

import (
	"context"

	"github.com/kestrelbank/kestrel/internal/cqrs"
	"github.com/kestrelbank/kestrel/internal/models"
)

// DefaultActivityLimit is used when a feed query does not name a limit.
const DefaultActivityLimit = 10

// ActivityReader is the ledger read contract.
type ActivityReader interface {
	ListForAccount(ctx context.Context, accountID string, limit int) ([]models.Transaction, error)
	ListForOwner(ctx context.Context, ownerID string, limit int) ([]models.Transaction, error)
}

// ViewCache is the committed-state account projection. A miss is answered
// from the database and written back.
type ViewCache interface {
	GetView(ctx context.Context, accountNumber string) (*models.AccountView, bool)
	CacheView(ctx context.Context, view *models.AccountView)
}

// QueryService serves read-only projections. It never opens a unit of work,
// so it can only ever observe committed state.
type QueryService struct {
	accounts AccountStore
	ledger   ActivityReader
	views    ViewCache
}

func NewQueryService(accounts AccountStore, ledger ActivityReader, views ViewCache) *QueryService {
	return &QueryService{accounts: accounts, ledger: ledger, views: views}
}

// CurrentBalance returns the committed account projection, ownership
// checked. A cached view owned by someone else is treated exactly like a
// missing account.
func (s *QueryService) CurrentBalance(ctx context.Context, q cqrs.GetBalanceQuery) (*models.AccountView, error) {
	if view, ok := s.views.GetView(ctx, q.AccountNumber); ok {
		if view.OwnerID != q.OwnerID {
			return nil, models.ErrAccountNotFound
		}
		return view, nil
	}

	account, err := s.accounts.GetByOwnerAndNumber(ctx, q.OwnerID, q.AccountNumber)
	if err != nil {
		return nil, err
	}
	view := models.NewAccountView(account)
	s.views.CacheView(ctx, view)
	return view, nil
}

// RecentActivity returns the newest records across all of the owner's
// accounts, source or destination side, newest first. A zero limit means
// DefaultActivityLimit; a negative limit returns the full history.
func (s *QueryService) RecentActivity(ctx context.Context, q cqrs.RecentActivityQuery) ([]models.Transaction, error) {
	limit := q.Limit
	if limit == 0 {
		limit = DefaultActivityLimit
	}
	return s.ledger.ListForOwner(ctx, q.OwnerID, limit)
}

// ListForAccount returns the newest records touching one owned account.
func (s *QueryService) ListForAccount(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
	account, err := s.accounts.GetByOwnerAndNumber(ctx, q.OwnerID, q.AccountNumber)
	if err != nil {
		return nil, err
	}
	return s.ledger.ListForAccount(ctx, account.ID, q.Limit)
}

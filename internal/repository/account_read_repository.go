package repository

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kestrelbank/kestrel/internal/models"
	kredis "github.com/kestrelbank/kestrel/internal/redis"
)

const accountViewKeyPrefix = "account:view:"

// AccountReadRepository holds the Redis projection of account state, keyed
// by account number. Entries are written only from committed rows: the query
// service warms the cache after a database read, and the transfer engine
// invalidates touched accounts after each commit.
type AccountReadRepository struct {
	cache *kredis.ViewCache[models.AccountView]
}

func NewAccountReadRepository(client *goredis.Client) *AccountReadRepository {
	return &AccountReadRepository{
		cache: kredis.NewViewCache[models.AccountView](client, 0),
	}
}

func (r *AccountReadRepository) GetView(ctx context.Context, accountNumber string) (*models.AccountView, bool) {
	return r.cache.Get(ctx, accountViewKeyPrefix+accountNumber)
}

func (r *AccountReadRepository) CacheView(ctx context.Context, view *models.AccountView) {
	r.cache.Set(ctx, accountViewKeyPrefix+view.AccountNumber, view)
}

// InvalidateView drops the projection so the next read comes from committed
// database state.
func (r *AccountReadRepository) InvalidateView(ctx context.Context, accountNumber string) {
	r.cache.Delete(ctx, accountViewKeyPrefix+accountNumber)
}

// internal/core/ports/item_repository.go
package ports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
)

// ItemRepository defines the persistence port for stock items.
// This interface is implemented by the database adapter.
//
// FindByIDForUpdate and UpdateQuantity operate inside a caller-supplied
// transaction so the stock adjuster can lock, validate and mutate the row
// atomically with the matching ledger append.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	FindByID(ctx context.Context, id int64) (*domain.Item, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Item, error)
	UpdateFields(ctx context.Context, id int64, update domain.ItemUpdate) (*domain.Item, error)
	UpdateQuantity(ctx context.Context, tx pgx.Tx, id int64, quantity int, restockedAt *time.Time) error
	FindAll(ctx context.Context, params ItemListParams) ([]*domain.Item, int64, error)
	FindLowStock(ctx context.Context) ([]*domain.Item, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// ItemListParams holds filters and pagination for listing items.
type ItemListParams struct {
	Search     string
	CategoryID *int64
	SupplierID *int64
	LowStock   bool
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// internal/core/ports/services.go
package ports

import (
	"context"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
)

// StockService is the application port for audited stock movement. Apply
// either fully commits (quantity update plus ledger entry) or fully fails
// with a typed error; there is no partially applied state.
type StockService interface {
	Apply(ctx context.Context, req domain.AdjustmentRequest) (*domain.Transaction, error)
}

// InventoryService is the application port for item CRUD. Quantity edits
// through UpdateItem bypass the ledger and are for administrative
// corrections only; audited movement goes through StockService.
type InventoryService interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	UpdateItem(ctx context.Context, id int64, update domain.ItemUpdate) (*domain.Item, error)
	ListItems(ctx context.Context, params ItemListParams) (*ItemListResult, error)
}

// ReportService is the read-only reporting port. Both queries observe
// committed state only and never block writers.
type ReportService interface {
	LowStock(ctx context.Context) ([]*domain.Item, error)
	RecentActivity(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// ItemListResult holds one page of items.
type ItemListResult struct {
	Items      []*domain.Item `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

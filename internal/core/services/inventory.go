// internal/core/services/inventory.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// InventoryService handles item CRUD. Quantity is created here and edited
// here only as an administrative correction; audited movement belongs to
// StockService.
type InventoryService struct {
	repo   ports.ItemRepository
	refs   ports.ReferenceRepository
	clock  ports.Clock
	logger *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService port.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service
func NewInventoryService(repo ports.ItemRepository, refs ports.ReferenceRepository, clock ports.Clock, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		repo:   repo,
		refs:   refs,
		clock:  clock,
		logger: logger.With(slog.String("service", "inventory")),
	}
}

// CreateItem validates and persists a new item, assigning its id. The
// initial quantity is recorded on the item itself, not as a ledger entry;
// callers that want an auditable creation event issue an explicit ADD
// adjustment afterwards.
func (s *InventoryService) CreateItem(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, item.CategoryID, item.SupplierID); err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	item.InitialQuantity = item.Quantity
	item.LastRestocked = now
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.InfoContext(ctx, "item created",
		slog.Int64("item_id", item.ID),
		slog.String("name", item.Name),
		slog.Int("quantity", item.Quantity))

	return nil
}

// GetItem retrieves an item by id.
func (s *InventoryService) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, &domain.NotFoundError{Entity: "item", ID: id}
	}
	return item, nil
}

// UpdateItem applies a partial update of the fields present in update and
// returns the new state. This path appends no ledger entry; a supplied
// quantity overwrites the stored value directly and is logged as an
// out-of-ledger correction.
func (s *InventoryService) UpdateItem(ctx context.Context, id int64, update domain.ItemUpdate) (*domain.Item, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, update.CategoryID, update.SupplierID); err != nil {
		return nil, err
	}

	if update.Quantity != nil {
		s.logger.WarnContext(ctx, "quantity edited outside the ledger",
			slog.Int64("item_id", id),
			slog.Int("new_quantity", *update.Quantity))
	}

	item, err := s.repo.UpdateFields(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	if item == nil {
		return nil, &domain.NotFoundError{Entity: "item", ID: id}
	}

	s.logger.InfoContext(ctx, "item updated", slog.Int64("item_id", id))
	return item, nil
}

// ListItems retrieves items with filtering and pagination, joined with
// category and supplier display names.
func (s *InventoryService) ListItems(ctx context.Context, params ports.ItemListParams) (*ports.ItemListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 50
	}
	if params.PageSize > 1000 {
		params.PageSize = 1000
	}

	items, totalCount, err := s.repo.FindAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var totalPages int
	if params.PageSize > 0 {
		totalPages = int(totalCount) / params.PageSize
		if int(totalCount)%params.PageSize > 0 {
			totalPages++
		}
	}

	return &ports.ItemListResult{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

func (s *InventoryService) checkReferences(ctx context.Context, categoryID, supplierID *int64) error {
	if categoryID != nil {
		ok, err := s.refs.CategoryExists(ctx, *categoryID)
		if err != nil {
			return &domain.StorageError{Op: "category lookup", Err: err}
		}
		if !ok {
			return &domain.ForeignKeyError{Field: "category_id", ID: *categoryID}
		}
	}
	if supplierID != nil {
		ok, err := s.refs.SupplierExists(ctx, *supplierID)
		if err != nil {
			return &domain.StorageError{Op: "supplier lookup", Err: err}
		}
		if !ok {
			return &domain.ForeignKeyError{Field: "supplier_id", ID: *supplierID}
		}
	}
	return nil
}

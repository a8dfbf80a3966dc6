// internal/adapters/db/item_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

const itemColumns = `
	i.id, i.name, i.description, i.category_id, i.supplier_id,
	i.quantity, i.initial_quantity, i.price, i.reorder_level,
	i.last_restocked, i.created_at, i.updated_at,
	COALESCE(c.name, ''), COALESCE(s.name, '')`

const itemJoins = `
	FROM items i
	LEFT JOIN categories c ON c.id = i.category_id
	LEFT JOIN suppliers s ON s.id = i.supplier_id`

// itemRepository implements ports.ItemRepository
type itemRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *Database, logger *slog.Logger) ports.ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "item")),
	}
}

// Create inserts a new item and assigns its id
func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (
			name, description, category_id, supplier_id,
			quantity, initial_quantity, price, reorder_level,
			last_restocked, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		item.Name, item.Description, item.CategoryID, item.SupplierID,
		item.Quantity, item.InitialQuantity, item.Price, item.ReorderLevel,
		item.LastRestocked, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)

	if err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	r.logger.DebugContext(ctx, "item saved",
		slog.Int64("item_id", item.ID),
		slog.String("name", item.Name))

	return nil
}

// FindByID retrieves an item by id, or nil when absent
func (r *itemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + itemJoins + ` WHERE i.id = $1`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}

	return item, nil
}

// FindByIDForUpdate loads the item row inside the caller's transaction with
// a FOR UPDATE lock, serializing concurrent adjustments of the same item.
// The reference joins are skipped; the locked snapshot only needs the
// quantity and price.
func (r *itemRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Item, error) {
	query := `
		SELECT id, name, description, category_id, supplier_id,
		       quantity, initial_quantity, price, reorder_level,
		       last_restocked, created_at, updated_at
		FROM items
		WHERE id = $1
		FOR UPDATE`

	item := &domain.Item{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.Description, &item.CategoryID, &item.SupplierID,
		&item.Quantity, &item.InitialQuantity, &item.Price, &item.ReorderLevel,
		&item.LastRestocked, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}

	return item, nil
}

// UpdateQuantity writes the new quantity inside the caller's transaction.
// restockedAt, when non-nil, also bumps last_restocked.
func (r *itemRepository) UpdateQuantity(ctx context.Context, tx pgx.Tx, id int64, quantity int, restockedAt *time.Time) error {
	var tag pgconn.CommandTag
	var err error

	if restockedAt != nil {
		tag, err = tx.Exec(ctx, `
			UPDATE items
			SET quantity = $2, last_restocked = $3, updated_at = $3
			WHERE id = $1`,
			id, quantity, *restockedAt)
	} else {
		tag, err = tx.Exec(ctx, `
			UPDATE items
			SET quantity = $2, updated_at = now()
			WHERE id = $1`,
			id, quantity)
	}

	if err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item not found: %d", id)
	}

	return nil
}

// UpdateFields applies a partial update and returns the new state, or nil
// when the item does not exist.
func (r *itemRepository) UpdateFields(ctx context.Context, id int64, update domain.ItemUpdate) (*domain.Item, error) {
	qb := squirrel.Update("items").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	if update.Name != nil {
		qb = qb.Set("name", *update.Name)
	}
	if update.Description != nil {
		qb = qb.Set("description", *update.Description)
	}
	if update.CategoryID != nil {
		qb = qb.Set("category_id", *update.CategoryID)
	}
	if update.SupplierID != nil {
		qb = qb.Set("supplier_id", *update.SupplierID)
	}
	if update.Quantity != nil {
		qb = qb.Set("quantity", *update.Quantity)
	}
	if update.Price != nil {
		qb = qb.Set("price", *update.Price)
	}
	if update.ReorderLevel != nil {
		qb = qb.Set("reorder_level", *update.ReorderLevel)
	}

	sqlQuery, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	var updatedID int64
	if err := r.db.QueryRow(ctx, sqlQuery, args...).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	r.logger.DebugContext(ctx, "item updated", slog.Int64("item_id", id))

	return r.FindByID(ctx, id)
}

// FindAll retrieves items with filtering and pagination
func (r *itemRepository) FindAll(ctx context.Context, params ports.ItemListParams) ([]*domain.Item, int64, error) {
	qb := squirrel.Select(
		"i.id", "i.name", "i.description", "i.category_id", "i.supplier_id",
		"i.quantity", "i.initial_quantity", "i.price", "i.reorder_level",
		"i.last_restocked", "i.created_at", "i.updated_at",
		"COALESCE(c.name, '')", "COALESCE(s.name, '')",
	).From("items i").
		LeftJoin("categories c ON c.id = i.category_id").
		LeftJoin("suppliers s ON s.id = i.supplier_id").
		PlaceholderFormat(squirrel.Dollar)

	// Apply filters
	if params.Search != "" {
		qb = qb.Where("i.name ILIKE ?", "%"+params.Search+"%")
	}
	if params.CategoryID != nil {
		qb = qb.Where(squirrel.Eq{"i.category_id": *params.CategoryID})
	}
	if params.SupplierID != nil {
		qb = qb.Where(squirrel.Eq{"i.supplier_id": *params.SupplierID})
	}
	if params.LowStock {
		qb = qb.Where("i.quantity <= i.reorder_level")
	}

	// Count total items (before pagination)
	countQb := squirrel.Select("COUNT(*)").From("items i").PlaceholderFormat(squirrel.Dollar)
	if params.Search != "" {
		countQb = countQb.Where("i.name ILIKE ?", "%"+params.Search+"%")
	}
	if params.CategoryID != nil {
		countQb = countQb.Where(squirrel.Eq{"i.category_id": *params.CategoryID})
	}
	if params.SupplierID != nil {
		countQb = countQb.Where(squirrel.Eq{"i.supplier_id": *params.SupplierID})
	}
	if params.LowStock {
		countQb = countQb.Where("i.quantity <= i.reorder_level")
	}

	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	// Apply sorting
	orderBy := "i.created_at DESC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}

		switch params.SortBy {
		case "name":
			orderBy = fmt.Sprintf("i.name %s", direction)
		case "quantity":
			orderBy = fmt.Sprintf("i.quantity %s", direction)
		case "price":
			orderBy = fmt.Sprintf("i.price %s", direction)
		case "updated":
			orderBy = fmt.Sprintf("i.updated_at %s", direction)
		default:
			orderBy = fmt.Sprintf("i.created_at %s", direction)
		}
	}
	qb = qb.OrderBy(orderBy)

	// Apply pagination
	if params.PageSize > 0 {
		qb = qb.Limit(uint64(params.PageSize))
		if params.Page > 1 {
			qb = qb.Offset(uint64((params.Page - 1) * params.PageSize))
		}
	}

	sqlQuery, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, totalCount, nil
}

// FindLowStock retrieves items at or below their reorder level, lowest
// headroom first.
func (r *itemRepository) FindLowStock(ctx context.Context) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + itemJoins + `
		WHERE i.quantity <= i.reorder_level
		ORDER BY (i.reorder_level - i.quantity) DESC, i.id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// Exists checks if an item exists
func (r *itemRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM items WHERE id = $1)`

	var exists bool
	err := r.db.QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return exists, nil
}

// scanItem scans one joined item row. Works for both pgx.Row and pgx.Rows.
func scanItem(row pgx.Row) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.CategoryID, &item.SupplierID,
		&item.Quantity, &item.InitialQuantity, &item.Price, &item.ReorderLevel,
		&item.LastRestocked, &item.CreatedAt, &item.UpdatedAt,
		&item.CategoryName, &item.SupplierName,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

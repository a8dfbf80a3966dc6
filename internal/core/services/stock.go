// internal/core/services/stock.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// StockService orchestrates audited stock movement. Every adjustment runs
// as one database transaction: the item row is locked with FOR UPDATE,
// validated against the locked snapshot, and the quantity update plus the
// ledger append commit together or not at all. The row lock serializes
// concurrent adjustments of the same item while leaving other items free.
type StockService struct {
	db     ports.Database
	items  ports.ItemRepository
	ledger ports.LedgerRepository
	refs   ports.ReferenceRepository
	clock  ports.Clock
	tasks  ports.TaskDispatcher
	logger *slog.Logger
}

// Statically assert that *StockService implements the StockService port.
var _ ports.StockService = (*StockService)(nil)

// NewStockService creates a new stock service. tasks may be nil when no
// background dispatch is wired (tests, seeder).
func NewStockService(
	db ports.Database,
	items ports.ItemRepository,
	ledger ports.LedgerRepository,
	refs ports.ReferenceRepository,
	clock ports.Clock,
	tasks ports.TaskDispatcher,
	logger *slog.Logger,
) *StockService {
	return &StockService{
		db:     db,
		items:  items,
		ledger: ledger,
		refs:   refs,
		clock:  clock,
		tasks:  tasks,
		logger: logger.With(slog.String("service", "stock")),
	}
}

// Apply validates and commits a single stock adjustment, returning the
// committed ledger entry. On any failure nothing is mutated: a REMOVE that
// exceeds the available quantity returns InsufficientStockError carrying
// the quantity observed in the snapshot, a missing item returns
// NotFoundError, and a cancelled context before commit rolls back cleanly.
func (s *StockService) Apply(ctx context.Context, req domain.AdjustmentRequest) (*domain.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ok, err := s.refs.UserExists(ctx, req.UserID)
	if err != nil {
		return nil, &domain.StorageError{Op: "user lookup", Err: err}
	}
	if !ok {
		return nil, &domain.ForeignKeyError{Field: "user_id", ID: req.UserID}
	}

	var (
		txn     *domain.Transaction
		applied *domain.Item
	)

	err = s.db.Transaction(ctx, func(tx pgx.Tx) error {
		item, err := s.items.FindByIDForUpdate(ctx, tx, req.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return &domain.NotFoundError{Entity: "item", ID: req.ItemID}
		}

		if req.Type == domain.TransactionRemove && req.Quantity > item.Quantity {
			return &domain.InsufficientStockError{
				ItemID:    req.ItemID,
				Requested: req.Quantity,
				Available: item.Quantity,
			}
		}

		newQuantity := item.Quantity + req.Type.SignedDelta(req.Quantity)

		// Price snapshot: total price uses the unit price read under the
		// same lock as the quantity. Later price edits never rewrite it.
		totalPrice := item.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))

		now := s.clock.Now().UTC()
		var restockedAt *time.Time
		if req.Type == domain.TransactionAdd {
			restockedAt = &now
		}

		if err := s.items.UpdateQuantity(ctx, tx, req.ItemID, newQuantity, restockedAt); err != nil {
			return err
		}

		txn = &domain.Transaction{
			ItemID:     req.ItemID,
			Quantity:   req.Quantity,
			Type:       req.Type,
			Timestamp:  now,
			UserID:     req.UserID,
			Reason:     req.Reason,
			TotalPrice: totalPrice,
		}
		if err := s.ledger.Append(ctx, tx, txn); err != nil {
			return err
		}

		item.Quantity = newQuantity
		if restockedAt != nil {
			item.LastRestocked = *restockedAt
		}
		applied = item

		return nil
	})

	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, &domain.StorageError{Op: "apply adjustment", Err: err}
	}

	s.logger.InfoContext(ctx, "stock adjustment committed",
		slog.Int64("transaction_id", txn.ID),
		slog.Int64("item_id", req.ItemID),
		slog.String("type", string(req.Type)),
		slog.Int("quantity", req.Quantity),
		slog.Int("new_quantity", applied.Quantity),
		slog.String("total_price", txn.TotalPrice.String()))

	if s.tasks != nil && applied.IsLowStock() {
		if err := s.tasks.DispatchLowStockAlert(ctx, applied); err != nil {
			// The adjustment is already durable; alerting is best effort.
			s.logger.WarnContext(ctx, "failed to dispatch low stock alert",
				slog.Int64("item_id", applied.ID),
				slog.String("error", err.Error()))
		}
	}

	return txn, nil
}

// isDomainError reports whether err is one of the typed validation
// failures that must pass through to the caller unwrapped.
func isDomainError(err error) bool {
	var (
		notFound     *domain.NotFoundError
		insufficient *domain.InsufficientStockError
		validation   *domain.ValidationError
		foreignKey   *domain.ForeignKeyError
	)
	return errors.As(err, &notFound) ||
		errors.As(err, &insufficient) ||
		errors.As(err, &validation) ||
		errors.As(err, &foreignKey) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ReplayBalance recomputes an item's quantity from its ledger history, for
// diagnostics. The result is initial quantity plus the signed sum of all
// entries, which equals the stored quantity whenever the fold property
// holds.
func (s *StockService) ReplayBalance(ctx context.Context, itemID int64) (int, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to load item %d: %w", itemID, err)
	}
	if item == nil {
		return 0, &domain.NotFoundError{Entity: "item", ID: itemID}
	}

	entries, err := s.ledger.FindByItem(ctx, itemID, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to load ledger for item %d: %w", itemID, err)
	}

	balance := item.InitialQuantity
	for i := range entries {
		balance += entries[i].Type.SignedDelta(entries[i].Quantity)
	}
	return balance, nil
}

// internal/core/ports/ledger_repository.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
)

// LedgerBalance pairs an item with the signed sum of its ledger entries,
// used by the reconciliation worker to verify the fold property.
type LedgerBalance struct {
	ItemID          int64
	InitialQuantity int
	Quantity        int
	LedgerDelta     int
}

// Drift is the difference between the stored quantity and the quantity
// implied by the ledger. Zero means the fold property holds.
func (b LedgerBalance) Drift() int {
	return b.Quantity - (b.InitialQuantity + b.LedgerDelta)
}

// LedgerRepository defines the persistence port for the append-only stock
// ledger. Entries are never updated or deleted.
type LedgerRepository interface {
	// Append writes one entry inside the caller's transaction, assigning
	// its id. The timestamp must already be set by the caller.
	Append(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	// Recent returns at most limit entries, newest first (timestamp DESC,
	// id ASC among equal timestamps), joined with item and user names.
	Recent(ctx context.Context, limit int) ([]domain.Transaction, error)
	FindByItem(ctx context.Context, itemID int64, limit int) ([]domain.Transaction, error)
	Balances(ctx context.Context) ([]LedgerBalance, error)
}

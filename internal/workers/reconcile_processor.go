// internal/workers/reconcile_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// ReconcileProcessor verifies that every item's stored quantity equals
// its initial quantity plus the signed sum of its ledger entries. Drift
// means an out-of-ledger write happened; it is reported, never repaired
// automatically.
type ReconcileProcessor struct {
	ledger ports.LedgerRepository
	logger *slog.Logger
}

// NewReconcileProcessor creates a new reconciliation processor
func NewReconcileProcessor(ledger ports.LedgerRepository, logger *slog.Logger) *ReconcileProcessor {
	return &ReconcileProcessor{
		ledger: ledger,
		logger: logger.With(slog.String("processor", "reconcile")),
	}
}

// ReconcileLedger checks all items and logs any drift between the stored
// quantity and the quantity the ledger implies.
func (p *ReconcileProcessor) ReconcileLedger(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "reconciling ledger")

	balances, err := p.ledger.Balances(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger balances: %w", err)
	}

	var drifted int
	for _, b := range balances {
		if drift := b.Drift(); drift != 0 {
			drifted++
			p.logger.ErrorContext(ctx, "ledger drift detected",
				slog.Int64("item_id", b.ItemID),
				slog.Int("stored_quantity", b.Quantity),
				slog.Int("initial_quantity", b.InitialQuantity),
				slog.Int("ledger_delta", b.LedgerDelta),
				slog.Int("drift", drift))
		}
	}

	p.logger.InfoContext(ctx, "ledger reconciliation completed",
		slog.Int("items_checked", len(balances)),
		slog.Int("items_drifted", drifted))

	if drifted > 0 {
		return fmt.Errorf("ledger drift on %d of %d items", drifted, len(balances))
	}

	return nil
}

// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// Task type identifiers
const (
	TypeLowStockAlert   = "stock:low_alert"
	TypeReconcileLedger = "ledger:reconcile"
	TypeCleanupCache    = "cache:cleanup"
)

// LowStockAlertPayload carries the item snapshot taken when the
// adjustment that crossed the reorder level committed.
type LowStockAlertPayload struct {
	ItemID       int64  `json:"item_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
}

// Dispatcher enqueues background tasks via asynq
type Dispatcher struct {
	client *asynq.Client
	logger *slog.Logger
}

// Statically assert that *Dispatcher implements the TaskDispatcher port.
var _ ports.TaskDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a new task dispatcher
func NewDispatcher(client *asynq.Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger.With(slog.String("component", "dispatcher")),
	}
}

// DispatchLowStockAlert enqueues a low stock alert for an item whose
// committed quantity sits at or below its reorder level.
func (d *Dispatcher) DispatchLowStockAlert(ctx context.Context, item *domain.Item) error {
	payload, err := json.Marshal(LowStockAlertPayload{
		ItemID:       item.ID,
		Name:         item.Name,
		Quantity:     item.Quantity,
		ReorderLevel: item.ReorderLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeLowStockAlert, payload, asynq.MaxRetry(3), asynq.Queue("default"))
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue low stock alert: %w", err)
	}

	d.logger.DebugContext(ctx, "low stock alert enqueued",
		slog.String("task_id", info.ID),
		slog.Int64("item_id", item.ID))

	return nil
}

// internal/core/ports/tasks.go
package ports

import (
	"context"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
)

// TaskDispatcher enqueues background work. Dispatch happens after commit;
// a dispatch failure never rolls back the adjustment it follows.
type TaskDispatcher interface {
	DispatchLowStockAlert(ctx context.Context, item *domain.Item) error
}

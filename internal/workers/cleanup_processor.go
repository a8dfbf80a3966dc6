// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// CleanupProcessor handles cache cleanup tasks
type CleanupProcessor struct {
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(cache ports.CacheRepository, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		cache:  cache,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupCache drops cached report entries so the next read rebuilds
// them from the store. The report TTL already bounds staleness; this
// task exists for forced refreshes after bulk data changes.
func (p *CleanupProcessor) CleanupCache(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up report cache")

	if err := p.cache.DeletePattern(ctx, "reports:*"); err != nil {
		return fmt.Errorf("failed to cleanup report cache: %w", err)
	}

	p.logger.InfoContext(ctx, "report cache cleaned up")
	return nil
}

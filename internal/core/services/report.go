// internal/core/services/report.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

const (
	lowStockCacheKey       = "reports:low_stock"
	activityCacheKeyFormat = "reports:activity:%d"
	reportCacheTTL         = 30 * time.Second

	defaultActivityLimit = 10
	maxActivityLimit     = 100
)

// ReportService serves the read-only views: low-stock alerts and recent
// activity. Both observe committed state only; results are briefly cached
// so report traffic never leans on the write path.
type ReportService struct {
	items  ports.ItemRepository
	ledger ports.LedgerRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

// Statically assert that *ReportService implements the ReportService port.
var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a new report service. cache may be nil; reads
// then go straight to the store.
func NewReportService(items ports.ItemRepository, ledger ports.LedgerRepository, cache ports.CacheRepository, logger *slog.Logger) *ReportService {
	return &ReportService{
		items:  items,
		ledger: ledger,
		cache:  cache,
		logger: logger.With(slog.String("service", "report")),
	}
}

// LowStock returns every item whose quantity is at or below its reorder
// level, boundary inclusive.
func (s *ReportService) LowStock(ctx context.Context) ([]*domain.Item, error) {
	if s.cache == nil {
		return s.fetchLowStock(ctx)
	}

	var items []*domain.Item
	err := s.cache.GetOrSet(ctx, lowStockCacheKey, &items, func() (interface{}, error) {
		fetched, err := s.fetchLowStock(ctx)
		if err != nil {
			return nil, err
		}
		return fetched, nil
	}, reportCacheTTL)
	if err != nil {
		// Cache trouble must not break the report.
		s.logger.WarnContext(ctx, "low stock cache bypassed",
			slog.String("error", err.Error()))
		return s.fetchLowStock(ctx)
	}
	return items, nil
}

// RecentActivity returns at most limit ledger entries, newest first, joined
// with item and user names. A non-positive limit falls back to 10.
func (s *ReportService) RecentActivity(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	if s.cache == nil {
		return s.fetchActivity(ctx, limit)
	}

	key := fmt.Sprintf(activityCacheKeyFormat, limit)
	var txns []domain.Transaction
	err := s.cache.GetOrSet(ctx, key, &txns, func() (interface{}, error) {
		fetched, err := s.fetchActivity(ctx, limit)
		if err != nil {
			return nil, err
		}
		return fetched, nil
	}, reportCacheTTL)
	if err != nil {
		s.logger.WarnContext(ctx, "activity cache bypassed",
			slog.String("error", err.Error()))
		return s.fetchActivity(ctx, limit)
	}
	return txns, nil
}

func (s *ReportService) fetchLowStock(ctx context.Context) ([]*domain.Item, error) {
	items, err := s.items.FindLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock items: %w", err)
	}
	return items, nil
}

func (s *ReportService) fetchActivity(ctx context.Context, limit int) ([]domain.Transaction, error) {
	txns, err := s.ledger.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	return txns, nil
}

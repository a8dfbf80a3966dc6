// internal/core/services/report_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/services"
	"github.com/stocktrail/stocktrail-be/test/helpers"
	"github.com/stocktrail/stocktrail-be/test/mocks"
)

func newReportService(t *testing.T, withCache bool) (*services.ReportService, *mocks.MockItemRepository, *mocks.MockLedgerRepository, *mocks.MockCacheRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemRepository(ctrl)
	ledger := mocks.NewMockLedgerRepository(ctrl)

	var cache *mocks.MockCacheRepository
	if withCache {
		cache = mocks.NewMockCacheRepository(ctrl)
		return services.NewReportService(items, ledger, cache, helpers.TestLogger()), items, ledger, cache
	}
	return services.NewReportService(items, ledger, nil, helpers.TestLogger()), items, ledger, nil
}

func TestReportService_LowStock(t *testing.T) {
	lowItems := []*domain.Item{
		helpers.CreateTestItem(func(i *domain.Item) {
			i.ID = 1
			i.Quantity = 3
			i.ReorderLevel = 10
		}),
	}

	t.Run("without_cache_queries_repository_directly", func(t *testing.T) {
		service, items, _, _ := newReportService(t, false)

		items.EXPECT().FindLowStock(gomock.Any()).Return(lowItems, nil)

		result, err := service.LowStock(context.Background())
		require.NoError(t, err)
		assert.Equal(t, lowItems, result)
	})

	t.Run("with_cache_delegates_to_get_or_set", func(t *testing.T) {
		service, items, _, cache := newReportService(t, true)

		items.EXPECT().FindLowStock(gomock.Any()).Return(lowItems, nil)
		cache.EXPECT().
			GetOrSet(gomock.Any(), "reports:low_stock", gomock.Any(), gomock.Any(), 30*time.Second).
			DoAndReturn(func(ctx context.Context, key string, dest interface{},
				fetch func() (interface{}, error), ttl time.Duration) error {
				fetched, err := fetch()
				if err != nil {
					return err
				}
				*dest.(*[]*domain.Item) = fetched.([]*domain.Item)
				return nil
			})

		result, err := service.LowStock(context.Background())
		require.NoError(t, err)
		assert.Equal(t, lowItems, result)
	})

	t.Run("cache_failure_falls_back_to_repository", func(t *testing.T) {
		service, items, _, cache := newReportService(t, true)

		cache.EXPECT().
			GetOrSet(gomock.Any(), "reports:low_stock", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("redis down"))
		items.EXPECT().FindLowStock(gomock.Any()).Return(lowItems, nil)

		result, err := service.LowStock(context.Background())
		require.NoError(t, err)
		assert.Equal(t, lowItems, result)
	})

	t.Run("repository_error_propagates", func(t *testing.T) {
		service, items, _, _ := newReportService(t, false)

		items.EXPECT().FindLowStock(gomock.Any()).Return(nil, errors.New("database error"))

		_, err := service.LowStock(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query low stock items")
	})
}

func TestReportService_RecentActivity(t *testing.T) {
	txns := []domain.Transaction{
		*helpers.CreateTestTransaction(1, 7),
		*helpers.CreateTestTransaction(2, 7, func(tx *domain.Transaction) {
			tx.Type = domain.TransactionRemove
		}),
	}

	t.Run("passes_limit_through", func(t *testing.T) {
		service, _, ledger, _ := newReportService(t, false)

		ledger.EXPECT().Recent(gomock.Any(), 25).Return(txns, nil)

		result, err := service.RecentActivity(context.Background(), 25)
		require.NoError(t, err)
		assert.Equal(t, txns, result)
	})

	t.Run("non_positive_limit_defaults_to_ten", func(t *testing.T) {
		service, _, ledger, _ := newReportService(t, false)

		ledger.EXPECT().Recent(gomock.Any(), 10).Return(txns, nil)

		_, err := service.RecentActivity(context.Background(), 0)
		require.NoError(t, err)
	})

	t.Run("limit_is_capped_at_one_hundred", func(t *testing.T) {
		service, _, ledger, _ := newReportService(t, false)

		ledger.EXPECT().Recent(gomock.Any(), 100).Return(txns, nil)

		_, err := service.RecentActivity(context.Background(), 5000)
		require.NoError(t, err)
	})

	t.Run("cache_key_includes_limit", func(t *testing.T) {
		service, _, ledger, cache := newReportService(t, true)

		ledger.EXPECT().Recent(gomock.Any(), 25).Return(txns, nil)
		cache.EXPECT().
			GetOrSet(gomock.Any(), "reports:activity:25", gomock.Any(), gomock.Any(), 30*time.Second).
			DoAndReturn(func(ctx context.Context, key string, dest interface{},
				fetch func() (interface{}, error), ttl time.Duration) error {
				fetched, err := fetch()
				if err != nil {
					return err
				}
				*dest.(*[]domain.Transaction) = fetched.([]domain.Transaction)
				return nil
			})

		result, err := service.RecentActivity(context.Background(), 25)
		require.NoError(t, err)
		assert.Equal(t, txns, result)
	})

	t.Run("ledger_error_propagates", func(t *testing.T) {
		service, _, ledger, _ := newReportService(t, false)

		ledger.EXPECT().Recent(gomock.Any(), 10).Return(nil, errors.New("database error"))

		_, err := service.RecentActivity(context.Background(), 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query recent activity")
	})
}

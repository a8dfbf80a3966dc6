// internal/workers/processors_test.go
package workers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stocktrail/stocktrail-be/internal/core/ports"
	"github.com/stocktrail/stocktrail-be/internal/pkg/config"
	"github.com/stocktrail/stocktrail-be/internal/workers"
	"github.com/stocktrail/stocktrail-be/test/helpers"
	"github.com/stocktrail/stocktrail-be/test/mocks"
)

func TestReconcileProcessor_ReconcileLedger(t *testing.T) {
	task := asynq.NewTask(workers.TypeReconcileLedger, nil)

	t.Run("clean_ledger_passes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedgerRepository(ctrl)

		ledger.EXPECT().Balances(gomock.Any()).Return([]ports.LedgerBalance{
			{ItemID: 1, InitialQuantity: 100, Quantity: 130, LedgerDelta: 30},
			{ItemID: 2, InitialQuantity: 50, Quantity: 50, LedgerDelta: 0},
		}, nil)

		processor := workers.NewReconcileProcessor(ledger, helpers.TestLogger())
		assert.NoError(t, processor.ReconcileLedger(context.Background(), task))
	})

	t.Run("drift_is_reported_as_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedgerRepository(ctrl)

		ledger.EXPECT().Balances(gomock.Any()).Return([]ports.LedgerBalance{
			{ItemID: 1, InitialQuantity: 100, Quantity: 130, LedgerDelta: 30},
			{ItemID: 2, InitialQuantity: 50, Quantity: 60, LedgerDelta: 0},
		}, nil)

		processor := workers.NewReconcileProcessor(ledger, helpers.TestLogger())
		err := processor.ReconcileLedger(context.Background(), task)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger drift on 1 of 2 items")
	})

	t.Run("balance_query_failure_propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := mocks.NewMockLedgerRepository(ctrl)

		ledger.EXPECT().Balances(gomock.Any()).Return(nil, errors.New("database error"))

		processor := workers.NewReconcileProcessor(ledger, helpers.TestLogger())
		err := processor.ReconcileLedger(context.Background(), task)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load ledger balances")
	})
}

func TestCleanupProcessor_CleanupCache(t *testing.T) {
	task := asynq.NewTask(workers.TypeCleanupCache, nil)

	t.Run("drops_report_keys", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCacheRepository(ctrl)

		cache.EXPECT().DeletePattern(gomock.Any(), "reports:*").Return(nil)

		processor := workers.NewCleanupProcessor(cache, helpers.TestLogger())
		assert.NoError(t, processor.CleanupCache(context.Background(), task))
	})

	t.Run("cache_failure_propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCacheRepository(ctrl)

		cache.EXPECT().DeletePattern(gomock.Any(), "reports:*").Return(errors.New("redis down"))

		processor := workers.NewCleanupProcessor(cache, helpers.TestLogger())
		err := processor.CleanupCache(context.Background(), task)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to cleanup report cache")
	})
}

func TestLowStockProcessor_ProcessAlert(t *testing.T) {
	payload := []byte(`{"item_id":1,"name":"Widget","quantity":2,"reorder_level":10}`)

	t.Run("development_only_logs", func(t *testing.T) {
		cfg := helpers.LoadTestConfig()
		cfg.App.Environment = "development"

		processor := workers.NewLowStockProcessor(cfg, helpers.TestLogger())
		task := asynq.NewTask(workers.TypeLowStockAlert, payload)
		assert.NoError(t, processor.ProcessAlert(context.Background(), task))
	})

	t.Run("missing_recipient_drops_alert", func(t *testing.T) {
		cfg := helpers.LoadTestConfig()
		cfg.App.Environment = "production"
		cfg.Alerts = config.AlertsConfig{}

		processor := workers.NewLowStockProcessor(cfg, helpers.TestLogger())
		task := asynq.NewTask(workers.TypeLowStockAlert, payload)
		assert.NoError(t, processor.ProcessAlert(context.Background(), task))
	})

	t.Run("malformed_payload_fails", func(t *testing.T) {
		processor := workers.NewLowStockProcessor(helpers.LoadTestConfig(), helpers.TestLogger())
		task := asynq.NewTask(workers.TypeLowStockAlert, []byte(`{"item_id":`))
		err := processor.ProcessAlert(context.Background(), task)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal payload")
	})
}

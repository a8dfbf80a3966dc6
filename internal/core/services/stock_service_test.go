// internal/core/services/stock_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/services"
	"github.com/stocktrail/stocktrail-be/test/helpers"
	"github.com/stocktrail/stocktrail-be/test/mocks"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

type stockMocks struct {
	db     *mocks.MockDatabase
	items  *mocks.MockItemRepository
	ledger *mocks.MockLedgerRepository
	refs   *mocks.MockReferenceRepository
	clock  *mocks.MockClock
	tasks  *mocks.MockTaskDispatcher
}

func newStockService(t *testing.T) (*services.StockService, *stockMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := &stockMocks{
		db:     mocks.NewMockDatabase(ctrl),
		items:  mocks.NewMockItemRepository(ctrl),
		ledger: mocks.NewMockLedgerRepository(ctrl),
		refs:   mocks.NewMockReferenceRepository(ctrl),
		clock:  mocks.NewMockClock(ctrl),
		tasks:  mocks.NewMockTaskDispatcher(ctrl),
	}

	service := services.NewStockService(
		m.db, m.items, m.ledger, m.refs, m.clock, m.tasks, helpers.TestLogger())
	return service, m
}

// passThroughTransaction makes the mock database run the transactional
// closure directly, standing in for a real commit.
func passThroughTransaction(m *stockMocks) {
	m.db.EXPECT().
		Transaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(pgx.Tx) error) error {
			return fn(nil)
		})
}

func TestStockService_Apply(t *testing.T) {
	tests := []struct {
		name          string
		req           domain.AdjustmentRequest
		setupMocks    func(*stockMocks)
		check         func(*testing.T, *domain.Transaction)
		expectedError bool
		errorContains string
		errorAs       func(error) bool
	}{
		{
			name: "add_increases_quantity_and_appends_entry",
			req: domain.AdjustmentRequest{
				ItemID: 1, Quantity: 30, Type: domain.TransactionAdd, UserID: 7, Reason: "restock",
			},
			setupMocks: func(m *stockMocks) {
				m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
				passThroughTransaction(m)
				m.items.EXPECT().
					FindByIDForUpdate(gomock.Any(), gomock.Any(), int64(1)).
					Return(helpers.CreateTestItem(func(i *domain.Item) {
						i.ID = 1
						i.Quantity = 100
					}), nil)
				m.clock.EXPECT().Now().Return(fixedNow)
				m.items.EXPECT().
					UpdateQuantity(gomock.Any(), gomock.Any(), int64(1), 130, gomock.Not(gomock.Nil())).
					Return(nil)
				m.ledger.EXPECT().
					Append(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
						txn.ID = 42
						return nil
					})
			},
			check: func(t *testing.T, txn *domain.Transaction) {
				assert.Equal(t, int64(42), txn.ID)
				assert.Equal(t, domain.TransactionAdd, txn.Type)
				assert.Equal(t, 30, txn.Quantity)
				assert.Equal(t, fixedNow, txn.Timestamp)
			},
		},
		{
			name: "remove_decreases_quantity_without_restock_timestamp",
			req: domain.AdjustmentRequest{
				ItemID: 1, Quantity: 40, Type: domain.TransactionRemove, UserID: 7,
			},
			setupMocks: func(m *stockMocks) {
				m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
				passThroughTransaction(m)
				m.items.EXPECT().
					FindByIDForUpdate(gomock.Any(), gomock.Any(), int64(1)).
					Return(helpers.CreateTestItem(func(i *domain.Item) {
						i.ID = 1
						i.Quantity = 100
					}), nil)
				m.clock.EXPECT().Now().Return(fixedNow)
				m.items.EXPECT().
					UpdateQuantity(gomock.Any(), gomock.Any(), int64(1), 60, gomock.Nil()).
					Return(nil)
				m.ledger.EXPECT().
					Append(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			check: func(t *testing.T, txn *domain.Transaction) {
				assert.Equal(t, domain.TransactionRemove, txn.Type)
				assert.Equal(t, 40, txn.Quantity)
			},
		},
		{
			name: "total_price_snapshots_unit_price_at_commit",
			req: domain.AdjustmentRequest{
				ItemID: 1, Quantity: 30, Type: domain.TransactionAdd, UserID: 7,
			},
			setupMocks: func(m *stockMocks) {
				m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
				passThroughTransaction(m)
				m.items.EXPECT().
					FindByIDForUpdate(gomock.Any(), gomock.Any(), int64(1)).
					Return(helpers.CreateTestItem(func(i *domain.Item) {
						i.ID = 1
						i.Quantity = 100
						i.Price = decimal.NewFromFloat(2.50)
					}), nil)
				m.clock.EXPECT().Now().Return(fixedNow)
				m.items.EXPECT().
					UpdateQuantity(gomock.Any(), gomock.Any(), int64(1), 130, gomock.Any()).
					Return(nil)
				m.ledger.EXPECT().
					Append(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			check: func(t *testing.T, txn *domain.Transaction) {
				expected := decimal.NewFromFloat(75.00)
				assert.True(t, txn.TotalPrice.Equal(expected),
					"Expected total: %s, Got: %s", expected, txn.TotalPrice)
			},
		},
		{
			name: "remove_exceeding_stock_fails_without_mutation",
			req: domain.AdjustmentRequest{
				ItemID: 1, Quantity: 150, Type: domain.TransactionRemove, UserID: 7,
			},
			setupMocks: func(m *stockMocks) {
				m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
				passThroughTransaction(m)
				m.items.EXPECT().
					FindByIDForUpdate(gomock.Any(), gomock.Any(), int64(1)).
					Return(helpers.CreateTestItem(func(i *domain.Item) {
						i.ID = 1
						i.Quantity = 100
					}), nil)
			},
			expectedError: true,
			errorContains: "insufficient stock for item 1: requested 150, available 100",
			errorAs: func(err error) bool {
				var insufficient *domain.InsufficientStockError
				return errors.As(err, &insufficient)
			},
		},
		{
			name: "missing_item_returns_not_found",
			req: domain.AdjustmentRequest{
				ItemID: 99, Quantity: 5, Type: domain.TransactionAdd, UserID: 7,
			},
			setupMocks: func(m *stockMocks) {
				m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
				passThroughTransaction(m)
				m.items.EXPECT().
					FindByIDForUpdate(gomock.Any(), gomock.Any(), int64(99)).
					Return(nil, nil)
			},
			expectedError: true,
			errorContains: "item not found: 99",
			errorAs: func(err error) bool {
				var notFound *domain.NotFoundError
				return errors.As(err, &notFound)
			},
		},
		{
			name: "zero_quantity_rejected_before_any_lookup",
			req: domain.AdjustmentRequest{
				ItemID: 1, Quantity: 0, Type: domain.TransactionAdd, UserID: 7,
			},
			setupMocks:    func(m *stockMocks) {},
			expectedError: true,
			errorContains: "invalid quantity: must be positive",
			errorAs: func(err error) bool {
				var validation *domain.ValidationError
				return errors.As(err, &validation)
			},
		},
		{
			name: "unknown_type_rejected",
			req: domain.AdjustmentRequest{
				ItemID: 1, Quantity: 5, Type: "TRANSFER", UserID: 7,
			},
			setupMocks:    func(m *stockMocks) {},
			expectedError: true,
			errorContains: "must be ADD or REMOVE",
		},
		{
			name: "unknown_user_rejected",
			req: domain.AdjustmentRequest{
				ItemID: 1, Quantity: 5, Type: domain.TransactionAdd, UserID: 66,
			},
			setupMocks: func(m *stockMocks) {
				m.refs.EXPECT().UserExists(gomock.Any(), int64(66)).Return(false, nil)
			},
			expectedError: true,
			errorContains: "user_id references missing row: 66",
			errorAs: func(err error) bool {
				var foreignKey *domain.ForeignKeyError
				return errors.As(err, &foreignKey)
			},
		},
		{
			name: "cancelled_context_passes_through_unwrapped",
			req: domain.AdjustmentRequest{
				ItemID: 1, Quantity: 5, Type: domain.TransactionAdd, UserID: 7,
			},
			setupMocks: func(m *stockMocks) {
				m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
				m.db.EXPECT().
					Transaction(gomock.Any(), gomock.Any()).
					Return(context.Canceled)
			},
			expectedError: true,
			errorAs: func(err error) bool {
				return errors.Is(err, context.Canceled)
			},
		},
		{
			name: "commit_failure_surfaces_as_storage_error",
			req: domain.AdjustmentRequest{
				ItemID: 1, Quantity: 5, Type: domain.TransactionAdd, UserID: 7,
			},
			setupMocks: func(m *stockMocks) {
				m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
				m.db.EXPECT().
					Transaction(gomock.Any(), gomock.Any()).
					Return(errors.New("connection reset"))
			},
			expectedError: true,
			errorContains: "storage failure during apply adjustment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newStockService(t)
			tt.setupMocks(m)

			txn, err := service.Apply(context.Background(), tt.req)

			if tt.expectedError {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				if tt.errorAs != nil {
					assert.True(t, tt.errorAs(err), "unexpected error type: %T", err)
				}
				assert.Nil(t, txn)
			} else {
				require.NoError(t, err)
				require.NotNil(t, txn)
				if tt.check != nil {
					tt.check(t, txn)
				}
			}
		})
	}
}

func TestStockService_Apply_LowStockDispatch(t *testing.T) {
	t.Run("dispatches_alert_when_at_reorder_level", func(t *testing.T) {
		service, m := newStockService(t)

		m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
		passThroughTransaction(m)
		m.items.EXPECT().
			FindByIDForUpdate(gomock.Any(), gomock.Any(), int64(1)).
			Return(helpers.CreateTestItem(func(i *domain.Item) {
				i.ID = 1
				i.Quantity = 12
				i.ReorderLevel = 10
			}), nil)
		m.clock.EXPECT().Now().Return(fixedNow)
		m.items.EXPECT().
			UpdateQuantity(gomock.Any(), gomock.Any(), int64(1), 10, gomock.Nil()).
			Return(nil)
		m.ledger.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		m.tasks.EXPECT().
			DispatchLowStockAlert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, item *domain.Item) error {
				assert.Equal(t, 10, item.Quantity)
				return nil
			})

		_, err := service.Apply(context.Background(), domain.AdjustmentRequest{
			ItemID: 1, Quantity: 2, Type: domain.TransactionRemove, UserID: 7,
		})
		require.NoError(t, err)
	})

	t.Run("dispatch_failure_does_not_fail_the_adjustment", func(t *testing.T) {
		service, m := newStockService(t)

		m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
		passThroughTransaction(m)
		m.items.EXPECT().
			FindByIDForUpdate(gomock.Any(), gomock.Any(), int64(1)).
			Return(helpers.CreateTestItem(func(i *domain.Item) {
				i.ID = 1
				i.Quantity = 11
				i.ReorderLevel = 10
			}), nil)
		m.clock.EXPECT().Now().Return(fixedNow)
		m.items.EXPECT().
			UpdateQuantity(gomock.Any(), gomock.Any(), int64(1), 10, gomock.Nil()).
			Return(nil)
		m.ledger.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		m.tasks.EXPECT().
			DispatchLowStockAlert(gomock.Any(), gomock.Any()).
			Return(errors.New("broker unavailable"))

		txn, err := service.Apply(context.Background(), domain.AdjustmentRequest{
			ItemID: 1, Quantity: 1, Type: domain.TransactionRemove, UserID: 7,
		})
		require.NoError(t, err)
		require.NotNil(t, txn)
	})

	t.Run("no_alert_above_reorder_level", func(t *testing.T) {
		service, m := newStockService(t)

		m.refs.EXPECT().UserExists(gomock.Any(), int64(7)).Return(true, nil)
		passThroughTransaction(m)
		m.items.EXPECT().
			FindByIDForUpdate(gomock.Any(), gomock.Any(), int64(1)).
			Return(helpers.CreateTestItem(func(i *domain.Item) {
				i.ID = 1
				i.Quantity = 100
				i.ReorderLevel = 10
			}), nil)
		m.clock.EXPECT().Now().Return(fixedNow)
		m.items.EXPECT().
			UpdateQuantity(gomock.Any(), gomock.Any(), int64(1), 99, gomock.Nil()).
			Return(nil)
		m.ledger.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := service.Apply(context.Background(), domain.AdjustmentRequest{
			ItemID: 1, Quantity: 1, Type: domain.TransactionRemove, UserID: 7,
		})
		require.NoError(t, err)
	})
}

func TestStockService_ReplayBalance(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(*stockMocks)
		expected      int
		expectedError bool
		errorContains string
	}{
		{
			name: "replays_initial_quantity_plus_signed_deltas",
			setupMocks: func(m *stockMocks) {
				m.items.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestItem(func(i *domain.Item) {
						i.ID = 1
						i.InitialQuantity = 100
					}), nil)
				m.ledger.EXPECT().
					FindByItem(gomock.Any(), int64(1), 0).
					Return([]domain.Transaction{
						{ItemID: 1, Quantity: 30, Type: domain.TransactionAdd},
						{ItemID: 1, Quantity: 45, Type: domain.TransactionRemove},
						{ItemID: 1, Quantity: 5, Type: domain.TransactionAdd},
					}, nil)
			},
			expected: 90,
		},
		{
			name: "empty_ledger_replays_to_initial_quantity",
			setupMocks: func(m *stockMocks) {
				m.items.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestItem(func(i *domain.Item) {
						i.ID = 1
						i.InitialQuantity = 100
					}), nil)
				m.ledger.EXPECT().
					FindByItem(gomock.Any(), int64(1), 0).
					Return(nil, nil)
			},
			expected: 100,
		},
		{
			name: "missing_item_returns_not_found",
			setupMocks: func(m *stockMocks) {
				m.items.EXPECT().
					FindByID(gomock.Any(), int64(1)).
					Return(nil, nil)
			},
			expectedError: true,
			errorContains: "item not found: 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newStockService(t)
			tt.setupMocks(m)

			balance, err := service.ReplayBalance(context.Background(), 1)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, balance)
			}
		})
	}
}

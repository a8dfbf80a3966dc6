// internal/handlers/reports_test.go
package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/handlers"
	"github.com/stocktrail/stocktrail-be/test/helpers"
	"github.com/stocktrail/stocktrail-be/test/mocks"
)

func TestReportHandler_LowStock(t *testing.T) {
	t.Run("returns_items_and_count", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := mocks.NewMockReportService(ctrl)

		items := []*domain.Item{
			helpers.CreateTestItem(func(i *domain.Item) {
				i.ID = 1
				i.Quantity = 2
				i.ReorderLevel = 10
			}),
			helpers.CreateTestItem(func(i *domain.Item) {
				i.ID = 2
				i.Quantity = 5
				i.ReorderLevel = 5
			}),
		}
		mockService.EXPECT().LowStock(gomock.Any()).Return(items, nil)

		handler := handlers.NewReportHandler(mockService, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/low-stock", nil)
		rec := httptest.NewRecorder()

		handler.LowStock(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Items []*domain.Item `json:"items"`
			Count int            `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("service_error_returns_500", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := mocks.NewMockReportService(ctrl)

		mockService.EXPECT().LowStock(gomock.Any()).Return(nil, errors.New("database error"))

		handler := handlers.NewReportHandler(mockService, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/low-stock", nil)
		rec := httptest.NewRecorder()

		handler.LowStock(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestReportHandler_RecentActivity(t *testing.T) {
	t.Run("parses_limit_parameter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := mocks.NewMockReportService(ctrl)

		txns := []domain.Transaction{*helpers.CreateTestTransaction(1, 7)}
		mockService.EXPECT().RecentActivity(gomock.Any(), 25).Return(txns, nil)

		handler := handlers.NewReportHandler(mockService, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/activity?limit=25", nil)
		rec := httptest.NewRecorder()

		handler.RecentActivity(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Transactions []domain.Transaction `json:"transactions"`
			Count        int                  `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Transactions, 1)
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("missing_limit_passes_zero", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := mocks.NewMockReportService(ctrl)

		mockService.EXPECT().RecentActivity(gomock.Any(), 0).Return(nil, nil)

		handler := handlers.NewReportHandler(mockService, helpers.TestLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/activity", nil)
		rec := httptest.NewRecorder()

		handler.RecentActivity(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

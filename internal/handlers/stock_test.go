// internal/handlers/stock_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/handlers"
	"github.com/stocktrail/stocktrail-be/test/helpers"
	"github.com/stocktrail/stocktrail-be/test/mocks"
)

func newStockMux(h *handlers.StockHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/items/{id}/adjustments", h.CreateAdjustment)
	return mux
}

func TestStockHandler_CreateAdjustment(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		setupMocks     func(*mocks.MockStockService)
		expectedStatus int
		checkBody      func(*testing.T, []byte)
	}{
		{
			name: "successful_adjustment_returns_201",
			path: "/api/v1/items/1/adjustments",
			body: `{"quantity":30,"transaction_type":"ADD","user_id":7,"reason":"restock"}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Apply(gomock.Any(), domain.AdjustmentRequest{
						ItemID:   1,
						Quantity: 30,
						Type:     domain.TransactionAdd,
						UserID:   7,
						Reason:   "restock",
					}).
					Return(&domain.Transaction{
						ID:         42,
						ItemID:     1,
						Quantity:   30,
						Type:       domain.TransactionAdd,
						UserID:     7,
						Reason:     "restock",
						TotalPrice: decimal.NewFromFloat(75.00),
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			checkBody: func(t *testing.T, body []byte) {
				var txn domain.Transaction
				require.NoError(t, json.Unmarshal(body, &txn))
				assert.Equal(t, int64(42), txn.ID)
				assert.True(t, txn.TotalPrice.Equal(decimal.NewFromFloat(75.00)))
			},
		},
		{
			name: "insufficient_stock_returns_409_with_details",
			path: "/api/v1/items/1/adjustments",
			body: `{"quantity":150,"transaction_type":"REMOVE","user_id":7}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Apply(gomock.Any(), gomock.Any()).
					Return(nil, &domain.InsufficientStockError{
						ItemID:    1,
						Requested: 150,
						Available: 100,
					})
			},
			expectedStatus: http.StatusConflict,
			checkBody: func(t *testing.T, body []byte) {
				var resp map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, float64(1), resp["item_id"])
				assert.Equal(t, float64(150), resp["requested"])
				assert.Equal(t, float64(100), resp["available"])
			},
		},
		{
			name: "missing_item_returns_404",
			path: "/api/v1/items/99/adjustments",
			body: `{"quantity":5,"transaction_type":"ADD","user_id":7}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Apply(gomock.Any(), gomock.Any()).
					Return(nil, &domain.NotFoundError{Entity: "item", ID: 99})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "invalid_type_returns_400",
			path: "/api/v1/items/1/adjustments",
			body: `{"quantity":5,"transaction_type":"TRANSFER","user_id":7}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Apply(gomock.Any(), gomock.Any()).
					Return(nil, &domain.ValidationError{
						Field: "transaction_type", Reason: "must be ADD or REMOVE",
					})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown_user_returns_422",
			path: "/api/v1/items/1/adjustments",
			body: `{"quantity":5,"transaction_type":"ADD","user_id":66}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Apply(gomock.Any(), gomock.Any()).
					Return(nil, &domain.ForeignKeyError{Field: "user_id", ID: 66})
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "malformed_json_returns_400",
			path:           "/api/v1/items/1/adjustments",
			body:           `{"quantity":`,
			setupMocks:     func(*mocks.MockStockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non_numeric_item_id_returns_400",
			path:           "/api/v1/items/abc/adjustments",
			body:           `{"quantity":5,"transaction_type":"ADD","user_id":7}`,
			setupMocks:     func(*mocks.MockStockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "storage_error_returns_500",
			path: "/api/v1/items/1/adjustments",
			body: `{"quantity":5,"transaction_type":"ADD","user_id":7}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Apply(gomock.Any(), gomock.Any()).
					Return(nil, &domain.StorageError{Op: "apply adjustment", Err: errors.New("connection reset")})
			},
			expectedStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body []byte) {
				// Internal details must not leak to the client.
				assert.NotContains(t, string(body), "connection reset")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := mocks.NewMockStockService(ctrl)
			tt.setupMocks(mockService)

			handler := handlers.NewStockHandler(mockService, helpers.TestLogger())
			mux := newStockMux(handler)

			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.checkBody != nil {
				tt.checkBody(t, rec.Body.Bytes())
			}
		})
	}
}

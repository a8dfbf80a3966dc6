// internal/core/domain/transaction_test.go
package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktrail/stocktrail-be/internal/core/domain"
)

func TestTransactionType_Valid(t *testing.T) {
	assert.True(t, domain.TransactionAdd.Valid())
	assert.True(t, domain.TransactionRemove.Valid())
	assert.False(t, domain.TransactionType("TRANSFER").Valid())
	assert.False(t, domain.TransactionType("add").Valid())
	assert.False(t, domain.TransactionType("").Valid())
}

func TestTransactionType_SignedDelta(t *testing.T) {
	assert.Equal(t, 30, domain.TransactionAdd.SignedDelta(30))
	assert.Equal(t, -30, domain.TransactionRemove.SignedDelta(30))
	assert.Equal(t, 0, domain.TransactionRemove.SignedDelta(0))
}

func TestAdjustmentRequest_Validate(t *testing.T) {
	valid := func() domain.AdjustmentRequest {
		return domain.AdjustmentRequest{
			ItemID:   1,
			Quantity: 5,
			Type:     domain.TransactionAdd,
			UserID:   7,
		}
	}

	tests := []struct {
		name          string
		mutate        func(*domain.AdjustmentRequest)
		expectedField string
	}{
		{
			name:   "valid_request",
			mutate: func(*domain.AdjustmentRequest) {},
		},
		{
			name:          "zero_item_id",
			mutate:        func(r *domain.AdjustmentRequest) { r.ItemID = 0 },
			expectedField: "item_id",
		},
		{
			name:          "zero_quantity",
			mutate:        func(r *domain.AdjustmentRequest) { r.Quantity = 0 },
			expectedField: "quantity",
		},
		{
			name:          "negative_quantity",
			mutate:        func(r *domain.AdjustmentRequest) { r.Quantity = -5 },
			expectedField: "quantity",
		},
		{
			name:          "unknown_type",
			mutate:        func(r *domain.AdjustmentRequest) { r.Type = "TRANSFER" },
			expectedField: "transaction_type",
		},
		{
			name:          "zero_user_id",
			mutate:        func(r *domain.AdjustmentRequest) { r.UserID = 0 },
			expectedField: "user_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			err := req.Validate()
			if tt.expectedField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.expectedField, vErr.Field)
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "item not found: 99",
		(&domain.NotFoundError{Entity: "item", ID: 99}).Error())
	assert.Equal(t, "insufficient stock for item 1: requested 150, available 100",
		(&domain.InsufficientStockError{ItemID: 1, Requested: 150, Available: 100}).Error())
	assert.Equal(t, "invalid quantity: must be positive",
		(&domain.ValidationError{Field: "quantity", Reason: "must be positive"}).Error())
	assert.Equal(t, "user_id references missing row: 66",
		(&domain.ForeignKeyError{Field: "user_id", ID: 66}).Error())
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &domain.StorageError{Op: "apply adjustment", Err: cause}

	assert.Equal(t, "storage failure during apply adjustment: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

// internal/core/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a stock movement
type TransactionType string

const (
	TransactionAdd    TransactionType = "ADD"
	TransactionRemove TransactionType = "REMOVE"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionAdd || t == TransactionRemove
}

// SignedDelta returns quantity with the sign implied by the type.
func (t TransactionType) SignedDelta(quantity int) int {
	if t == TransactionRemove {
		return -quantity
	}
	return quantity
}

// Transaction is one immutable entry in the stock ledger. The quantity is
// always recorded positive and paired with the type; total price is the
// snapshot quantity × unit price as read at commit time, never recomputed.
type Transaction struct {
	ID         int64           `json:"id"`
	ItemID     int64           `json:"item_id"`
	Quantity   int             `json:"quantity"`
	Type       TransactionType `json:"transaction_type"`
	Timestamp  time.Time       `json:"timestamp"`
	UserID     int64           `json:"user_id"`
	Reason     string          `json:"reason,omitempty"`
	TotalPrice decimal.Decimal `json:"total_price"`

	// Joined display fields, populated by read paths only.
	ItemName string `json:"item_name,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// AdjustmentRequest is the input to a stock adjustment.
type AdjustmentRequest struct {
	ItemID   int64           `json:"item_id"`
	Quantity int             `json:"quantity"`
	Type     TransactionType `json:"transaction_type"`
	UserID   int64           `json:"user_id"`
	Reason   string          `json:"reason"`
}

// Validate checks the request shape; stock sufficiency is checked later
// against the locked row snapshot.
func (r *AdjustmentRequest) Validate() error {
	if r.ItemID <= 0 {
		return &ValidationError{Field: "item_id", Reason: "must be positive"}
	}
	if r.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if !r.Type.Valid() {
		return &ValidationError{Field: "transaction_type", Reason: "must be ADD or REMOVE"}
	}
	if r.UserID <= 0 {
		return &ValidationError{Field: "user_id", Reason: "must be positive"}
	}
	return nil
}

// internal/core/domain/item.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a countable stock item
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	SupplierID  *int64 `json:"supplier_id,omitempty"`
	Quantity    int    `json:"quantity"`
	// InitialQuantity is the stock recorded at creation. Creation is not a
	// ledger entry, so the quantity history reads
	// quantity = initial_quantity + sum of signed deltas.
	InitialQuantity int             `json:"initial_quantity"`
	Price           decimal.Decimal `json:"price"`
	ReorderLevel    int             `json:"reorder_level"`
	LastRestocked   time.Time       `json:"last_restocked"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Display names resolved from reference data on read paths;
	// never written back.
	CategoryName string `json:"category_name,omitempty"`
	SupplierName string `json:"supplier_name,omitempty"`
}

// Validate performs domain validation on the item
func (i *Item) Validate() error {
	if i.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if i.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "cannot be negative"}
	}
	if i.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "cannot be negative"}
	}
	if i.ReorderLevel < 0 {
		return &ValidationError{Field: "reorder_level", Reason: "cannot be negative"}
	}
	return nil
}

// IsLowStock reports whether the item is at or below its reorder level.
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

// ItemUpdate carries a partial update of an item's mutable, non-audited
// attributes. A nil field means "leave unchanged"; quantity edits through
// this path are administrative corrections and write no ledger entry.
type ItemUpdate struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	CategoryID   *int64           `json:"category_id,omitempty"`
	SupplierID   *int64           `json:"supplier_id,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	ReorderLevel *int             `json:"reorder_level,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u *ItemUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.CategoryID == nil &&
		u.SupplierID == nil && u.Quantity == nil && u.Price == nil &&
		u.ReorderLevel == nil
}

// Validate checks the fields that are present.
func (u *ItemUpdate) Validate() error {
	if u.IsEmpty() {
		return &ValidationError{Field: "update", Reason: "no fields to update"}
	}
	if u.Name != nil && *u.Name == "" {
		return &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if u.Quantity != nil && *u.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "cannot be negative"}
	}
	if u.Price != nil && u.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "cannot be negative"}
	}
	if u.ReorderLevel != nil && *u.ReorderLevel < 0 {
		return &ValidationError{Field: "reorder_level", Reason: "cannot be negative"}
	}
	return nil
}

// internal/core/domain/errors.go
package domain

import "fmt"

// NotFoundError indicates that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}

// InsufficientStockError indicates a REMOVE larger than the available
// quantity. Available is the quantity observed in the commit snapshot, so
// callers can render a precise message without re-querying.
type InsufficientStockError struct {
	ItemID    int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// ValidationError indicates invalid caller input on a named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ForeignKeyError indicates a reference to a category, supplier or user
// that does not exist.
type ForeignKeyError struct {
	Field string
	ID    int64
}

func (e *ForeignKeyError) Error() string {
	return fmt.Sprintf("%s references missing row: %d", e.Field, e.ID)
}

// StorageError wraps a failure of the underlying persistence layer. It is
// fatal for the operation that hit it; the atomic commit guarantees no
// half-applied state was left behind.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

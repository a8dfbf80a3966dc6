// internal/adapters/db/reference_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

// referenceRepository implements ports.ReferenceRepository over the
// categories, suppliers and users tables.
type referenceRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *Database, logger *slog.Logger) ports.ReferenceRepository {
	return &referenceRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "reference")),
	}
}

func (r *referenceRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id)
}

func (r *referenceRepository) SupplierExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1)`, id)
}

func (r *referenceRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
}

// UserName returns the username for an id, or "" when the user is absent.
func (r *referenceRepository) UserName(ctx context.Context, id int64) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, id).Scan(&name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up user name: %w", err)
	}
	return name, nil
}

func (r *referenceRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

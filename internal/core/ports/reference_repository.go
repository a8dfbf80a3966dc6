// internal/core/ports/reference_repository.go
package ports

import "context"

// ReferenceRepository is the boundary to the reference-data collaborator:
// categories, suppliers and user accounts. The core only needs existence
// checks (to map foreign-key failures to typed errors) and display names;
// managing these rows is out of scope.
type ReferenceRepository interface {
	CategoryExists(ctx context.Context, id int64) (bool, error)
	SupplierExists(ctx context.Context, id int64) (bool, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	UserName(ctx context.Context, id int64) (string, error)
}

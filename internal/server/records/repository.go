package records

import (
	"context"
	"time"
)

// Repository is the table-like resource behind one entity type.
type Repository[T any] interface {
	// List returns every row in schema order.
	List(ctx context.Context) ([]*T, error)
	// Get returns one row or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*T, error)
	// First returns the first row of a singleton table or common.ErrorNotFound.
	First(ctx context.Context) (*T, error)
	// Insert stores a new row and returns it with server-assigned columns.
	Insert(ctx context.Context, fields Fields) (*T, error)
	// Update applies fields to row id and stamps updated_at with a value
	// that is at least at and strictly greater than the previous one.
	Update(ctx context.Context, id string, fields Fields, at time.Time) (*T, error)
	// Delete removes row id or returns common.ErrorNotFound.
	Delete(ctx context.Context, id string) error
	// AssetRef returns the asset column of row id (nil when NULL).
	AssetRef(ctx context.Context, id string) (*string, error)
}

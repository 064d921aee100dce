// Package records is the collection store shared by every managed entity:
// a declarative Schema describing a table and a generic PostgreSQL
// repository driven by it.
package records

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Schema describes how one entity type maps onto its table.
type Schema[T any] struct {
	// Entity is the short name used in routes, cache keys and logs.
	Entity string
	// Table is the SQL table name.
	Table string
	// Columns is the select list, in the order Scan expects.
	Columns []string
	// OrderBy is the ORDER BY clause used by List, e.g. "created_at DESC".
	OrderBy string
	// Fields lists the client-writable columns.
	Fields []FieldSpec
	// AssetField names the column holding an uploaded asset URL, if any.
	AssetField string
	// Scan reads one row produced by Columns.
	Scan func(row Scanner) (*T, error)
}

// Normalize validates a full field set for insert.
func (s *Schema[T]) Normalize(in Fields) (Fields, error) {
	return normalize(s.Fields, in, false)
}

// NormalizePatch validates a partial field set for update.
func (s *Schema[T]) NormalizePatch(in Fields) (Fields, error) {
	return normalize(s.Fields, in, true)
}

// HasAsset reports whether the entity carries an asset reference.
func (s *Schema[T]) HasAsset() bool {
	return s.AssetField != ""
}

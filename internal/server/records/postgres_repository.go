package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// invalidTextRepresentation is raised when an id is not a valid uuid.
const invalidTextRepresentation = "22P02"

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
// Column names come from the schema, never from request input.
type PostgresRepository[T any] struct {
	db     dbx.DBTX
	schema *Schema[T]
}

// NewPostgresRepository constructs a repository for schema bound to db.
func NewPostgresRepository[T any](db dbx.DBTX, schema *Schema[T]) *PostgresRepository[T] {
	return &PostgresRepository[T]{db: db, schema: schema}
}

func (r *PostgresRepository[T]) columns() string {
	return strings.Join(r.schema.Columns, ", ")
}

func (r *PostgresRepository[T]) List(ctx context.Context) ([]*T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, r.columns(), r.schema.Table)
	if r.schema.OrderBy != "" {
		query += ` ORDER BY ` + r.schema.OrderBy
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	result := make([]*T, 0)
	for rows.Next() {
		item, err := r.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.schema.Table, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository[T]) Get(ctx context.Context, id string) (*T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.columns(), r.schema.Table)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository[T]) First(ctx context.Context) (*T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s LIMIT 1`, r.columns(), r.schema.Table)
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

func (r *PostgresRepository[T]) Insert(ctx context.Context, fields Fields) (*T, error) {
	keys := fields.Keys()
	if len(keys) == 0 {
		query := fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES RETURNING %s`, r.schema.Table, r.columns())
		return r.scanOne(r.db.QueryRowContext(ctx, query))
	}

	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[k]
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		r.schema.Table, strings.Join(keys, ", "), strings.Join(placeholders, ", "), r.columns())

	return r.scanOne(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository[T]) Update(ctx context.Context, id string, fields Fields, at time.Time) (*T, error) {
	keys := fields.Keys()
	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, fields[k])
	}
	n := len(keys)
	sets = append(sets, fmt.Sprintf("updated_at = GREATEST($%d, updated_at + interval '1 microsecond')", n+1))
	args = append(args, at, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
		r.schema.Table, strings.Join(sets, ", "), n+2, r.columns())

	return r.scanOne(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.schema.Table)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.schema.Table, mapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository[T]) AssetRef(ctx context.Context, id string) (*string, error) {
	if !r.schema.HasAsset() {
		return nil, fmt.Errorf("%s has no asset column", r.schema.Table)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.schema.AssetField, r.schema.Table)

	var ref sql.NullString
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&ref); err != nil {
		return nil, mapError(err)
	}
	if !ref.Valid || ref.String == "" {
		return nil, nil
	}
	return &ref.String, nil
}

func (r *PostgresRepository[T]) scanOne(row *sql.Row) (*T, error) {
	item, err := r.schema.Scan(row)
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, pgErr.Detail)
		case invalidTextRepresentation:
			return fmt.Errorf("%w: malformed id", common.ErrorNotFound)
		}
	}
	return fmt.Errorf("db error: %w", err)
}

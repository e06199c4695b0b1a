// Package sqldb executes already-validated, read-only SQL against a
// Postgres database and returns column-ordered row maps.
package sqldb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pooled, read-only Postgres connection. One pool per process;
// no transactional state is shared across queries.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects a pool to dsn. The pool itself enforces no write
// transactions are opened by this package's own code; it does not (and
// cannot) prevent a caller from submitting write SQL — that enforcement is
// the validator's job upstream of Query.
func Open(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqldb: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqldb: ping: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close releases all pooled connections.
func (db *DB) Close() {
	db.pool.Close()
}

// Row is a single result row keyed by column name. A map has no order; the
// source column order is the columns slice Query returns alongside.
type Row = map[string]any

// Query executes sql (already validated read-only by the caller) and
// returns its rows along with the column name list in source order.
func (db *DB) Query(ctx context.Context, sql string) (columns []string, rows []Row, err error) {
	pgRows, err := db.pool.Query(ctx, sql)
	if err != nil {
		return nil, nil, fmt.Errorf("sqldb: query: %w", err)
	}
	defer pgRows.Close()

	fields := pgRows.FieldDescriptions()
	columns = make([]string, len(fields))
	for i, f := range fields {
		columns[i] = string(f.Name)
	}

	for pgRows.Next() {
		values, err := pgRows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("sqldb: scan row: %w", err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(values) {
				row[col] = values[i]
			}
		}
		rows = append(rows, row)
	}
	if err := pgRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("sqldb: row iteration: %w", err)
	}

	return columns, rows, nil
}

package database

import (
	"context"
	"fmt"
)

// Row is a single result row; *sql.Row and pgx.Row both satisfy it.
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result cursor.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Result reports how many rows a statement touched.
type Result interface {
	RowsAffected() (int64, error)
}

// Executor runs statements written with "?" placeholders. Drivers rebind
// them as needed and report duplicate keys as ErrDuplicateKey.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Transaction is an Executor that can be committed or rolled back.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection is a pooled database handle.
type Connection interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
	Ping(ctx context.Context) error
	Driver() Driver
}

// ExecOne runs a statement that must match at least one row and returns
// missing when it matched none. Versioned updates pass
// domain.ErrConcurrentModification; counter updates pass a not-found error.
func ExecOne(ctx context.Context, exec Executor, missing error, query string, args ...any) error {
	result, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}

// Collect drains rows through scan and closes them. A non-nil queryErr is
// returned as is, so the result of Query can be passed straight in.
func Collect[T any](rows Rows, queryErr error, scan func(Row) (T, error)) ([]T, error) {
	if queryErr != nil {
		return nil, queryErr
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

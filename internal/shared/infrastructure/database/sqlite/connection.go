// Package sqlite is the zero-configuration backend. Importing it registers
// the driver with the database package.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
)

// MemoryPath opens a private in-memory database. It lives as long as the
// single pooled connection does.
const MemoryPath = ":memory:"

// pragmas: WAL journal, enforced foreign keys, 5s busy wait.
const pragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

func init() {
	database.RegisterSQLiteDriver(NewConnection)
}

// Connection implements database.Connection on database/sql.
type Connection struct {
	runner
	db *sql.DB
}

// NewConnection opens the file at cfg.SQLitePath, creating its directory.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = database.DefaultSQLitePath()
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+pragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// One writer at a time; also keeps :memory: on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return &Connection{runner: runner{db}, db: db}, nil
}

func (c *Connection) Driver() database.Driver { return database.DriverSQLite }

func (c *Connection) Close() error { return c.db.Close() }

func (c *Connection) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

// BeginTx starts a transaction.
func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Transaction{runner: runner{tx}, tx: tx}, nil
}

// Transaction implements database.Transaction on *sql.Tx.
type Transaction struct {
	runner
	tx *sql.Tx
}

func (t *Transaction) Commit(context.Context) error { return t.tx.Commit() }

func (t *Transaction) Rollback(context.Context) error { return t.tx.Rollback() }

// querier is the part of *sql.DB and *sql.Tx the runner needs.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type runner struct {
	q querier
}

func (r runner) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

func (r runner) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return r.q.QueryRowContext(ctx, query, args...)
}

func (r runner) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func classify(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return database.DuplicateKeyError(err)
		}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return database.DuplicateKeyError(err)
	}
	return err
}

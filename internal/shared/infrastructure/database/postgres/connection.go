package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
)

func init() {
	database.RegisterPostgresDriver(NewConnection)
}

// Connection implements database.Connection on a pgx pool. Queries are
// written with "?" placeholders and rebound before execution.
type Connection struct {
	runner
	pool *pgxpool.Pool
}

// NewConnection creates a new PostgreSQL connection.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required for PostgreSQL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = convert.Int32Clamped(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Connection{runner: runner{pool}, pool: pool}, nil
}

func (c *Connection) Driver() database.Driver { return database.DriverPostgres }

func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

func (c *Connection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

// BeginTx starts a transaction.
func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Transaction{runner: runner{tx}, tx: tx}, nil
}

// Transaction implements database.Transaction on pgx.Tx.
type Transaction struct {
	runner
	tx pgx.Tx
}

func (t *Transaction) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

func (t *Transaction) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// querier is the part of *pgxpool.Pool and pgx.Tx the runner needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type runner struct {
	q querier
}

func (r runner) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	tag, err := r.q.Exec(ctx, database.Rebind(query), args...)
	if err != nil {
		return nil, classify(err)
	}
	return commandTag{tag}, nil
}

func (r runner) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return r.q.QueryRow(ctx, database.Rebind(query), args...)
}

func (r runner) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := r.q.Query(ctx, database.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{rows}, nil
}

// uniqueViolation is the SQLSTATE for unique and primary key conflicts.
const uniqueViolation = "23505"

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return database.DuplicateKeyError(err)
	}
	return err
}

type commandTag struct {
	tag pgconn.CommandTag
}

func (c commandTag) RowsAffected() (int64, error) { return c.tag.RowsAffected(), nil }

// pgxRows adapts pgx.Rows, whose Close returns nothing.
type pgxRows struct {
	pgx.Rows
}

func (r pgxRows) Close() error {
	r.Rows.Close()
	return nil
}

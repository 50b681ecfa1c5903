package database

import (
	"context"
	"errors"
)

// ErrNoTransaction is returned by Commit and Rollback on a context that
// carries no transaction.
var ErrNoTransaction = errors.New("no transaction in context")

// UnitOfWork implements application.UnitOfWork over a Connection. A Begin
// nested inside a running unit joins its transaction; only the outermost
// Commit or Rollback reaches the database.
type UnitOfWork struct {
	conn Connection
}

// NewUnitOfWork creates a UnitOfWork on conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// Begin starts a transaction, or joins the one already in ctx.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if s, ok := stateFrom(ctx); ok {
		return withTx(ctx, s.tx, false), nil
	}

	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return withTx(ctx, tx, true), nil
}

// Commit commits when ctx holds the outermost unit.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	return u.finish(ctx, Transaction.Commit)
}

// Rollback rolls back when ctx holds the outermost unit.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	return u.finish(ctx, Transaction.Rollback)
}

func (u *UnitOfWork) finish(ctx context.Context, end func(Transaction, context.Context) error) error {
	s, ok := stateFrom(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !s.owner {
		return nil
	}
	return end(s.tx, ctx)
}

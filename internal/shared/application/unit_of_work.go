package application

import (
	"context"
	"errors"
	"fmt"
)

// UnitOfWork brackets the repository calls of one command in a transaction.
// Begin returns the context that carries it.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc is a function that executes within a unit of work.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork runs fn in a unit of work, committing when it succeeds.
// A failed or panicking fn rolls the work back. A rollback failure is joined
// to fn's error so both remain matchable with errors.Is.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) (err error) {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = uow.Rollback(txCtx)
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := uow.Rollback(txCtx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := uow.Commit(txCtx); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}

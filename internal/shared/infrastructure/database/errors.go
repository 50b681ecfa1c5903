package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrDuplicateKey is wrapped around driver errors for unique or primary key
// conflicts.
var ErrDuplicateKey = errors.New("duplicate key")

// IsNoRows reports whether err means a single-row query matched nothing,
// whichever driver produced it.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// DuplicateKeyError marks cause as a duplicate key while keeping the driver
// error reachable through errors.As.
func DuplicateKeyError(cause error) error {
	return &duplicateKey{cause: cause}
}

type duplicateKey struct {
	cause error
}

func (e *duplicateKey) Error() string { return ErrDuplicateKey.Error() + ": " + e.cause.Error() }

func (e *duplicateKey) Unwrap() []error { return []error{ErrDuplicateKey, e.cause} }

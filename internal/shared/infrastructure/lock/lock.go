// Package lock provides per-key critical sections for task transitions.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when a lock cannot be obtained before the wait
// budget or the context runs out.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive leases on string keys.
type Locker interface {
	Acquire(ctx context.Context, key string) (Lease, error)
}

// Lease is a held lock. Release is safe to call more than once.
type Lease interface {
	Release(ctx context.Context) error
}

// WithLock runs fn while holding key.
func WithLock(ctx context.Context, locker Locker, key string, fn func(ctx context.Context) error) error {
	lease, err := locker.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() { _ = lease.Release(context.WithoutCancel(ctx)) }()

	return fn(ctx)
}

// TaskKey namespaces a task id.
func TaskKey(taskID string) string {
	return "perfboard:task:" + taskID
}

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	locker := NewLocalLocker(0)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(ctx, locker, TaskKey("task-1"), func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, locker.Held())
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	locker := NewLocalLocker(0)
	ctx := context.Background()

	first, err := locker.Acquire(ctx, TaskKey("task-1"))
	require.NoError(t, err)
	second, err := locker.Acquire(ctx, TaskKey("task-2"))
	require.NoError(t, err)

	assert.Equal(t, 2, locker.Held())
	require.NoError(t, first.Release(ctx))
	require.NoError(t, second.Release(ctx))
	assert.Zero(t, locker.Held())
}

func TestLocalLocker_WaitBudget(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	held, err := locker.Acquire(ctx, TaskKey("task-1"))
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, TaskKey("task-1"))
	require.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, held.Release(ctx))
	require.NoError(t, held.Release(ctx), "release is idempotent")

	again, err := locker.Acquire(ctx, TaskKey("task-1"))
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
	assert.Zero(t, locker.Held())
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalLocker(0)

	held, err := locker.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer held.Release(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locker.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestWithLock_PropagatesError(t *testing.T) {
	locker := NewLocalLocker(0)

	err := WithLock(context.Background(), locker, "k", func(context.Context) error {
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, locker.Held())
}

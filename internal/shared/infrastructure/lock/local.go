package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LocalLocker is an in-process keyed mutex. Waiters queue per key and give
// up when the wait budget or their context expires.
type LocalLocker struct {
	wait time.Duration

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates a LocalLocker. A non-positive wait means callers
// wait until their context is done.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		wait:  wait,
		slots: make(map[string]*slot),
	}
}

// Acquire blocks until key is free.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (Lease, error) {
	s := l.ref(key)

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case s.ch <- struct{}{}:
		return &localLease{locker: l, key: key, slot: s}, nil
	case <-ctx.Done():
		l.unref(key, s)
		return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
	}
}

// Held reports how many keys currently have holders or waiters.
func (l *LocalLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *LocalLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

type localLease struct {
	locker *LocalLocker
	key    string
	slot   *slot
	once   sync.Once
}

func (lease *localLease) Release(context.Context) error {
	lease.once.Do(func() {
		<-lease.slot.ch
		lease.locker.unref(lease.key, lease.slot)
	})
	return nil
}

package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lease never removes a lock taken over by another process.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig tunes lease expiry and acquisition.
type RedisConfig struct {
	TTL   time.Duration
	Wait  time.Duration
	Retry time.Duration
}

// RedisLocker shares per-task locks between processes through
// SET key token NX PX ttl.
type RedisLocker struct {
	client redis.UniversalClient
	cfg    RedisConfig
	logger *slog.Logger
}

// NewRedisLocker creates a RedisLocker.
func NewRedisLocker(client redis.UniversalClient, cfg RedisConfig, logger *slog.Logger) *RedisLocker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Retry <= 0 {
		cfg.Retry = 25 * time.Millisecond
	}
	return &RedisLocker{client: client, cfg: cfg, logger: logger}
}

// Acquire polls SET NX until it wins, the wait budget elapses, or ctx ends.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Lease, error) {
	token := uuid.NewString()

	if l.cfg.Wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Wait)
		defer cancel()
	}

	ticker := time.NewTicker(l.cfg.Retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return &redisLease{locker: l, key: key, token: token}, nil
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("lock wait expired", "key", key)
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		case <-ticker.C:
		}
	}
}

type redisLease struct {
	locker *RedisLocker
	key    string
	token  string
	once   sync.Once
	err    error
}

func (lease *redisLease) Release(ctx context.Context) error {
	lease.once.Do(func() {
		deleted, err := releaseScript.Run(ctx, lease.locker.client, []string{lease.key}, lease.token).Int()
		if err != nil {
			lease.err = fmt.Errorf("release %s: %w", lease.key, err)
			return
		}
		if deleted == 0 {
			lease.locker.logger.Warn("lock expired before release", "key", lease.key)
		}
	})
	return lease.err
}

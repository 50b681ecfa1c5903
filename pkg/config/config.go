// Package config reads perfboard settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppEnv    string
	LogLevel  string
	LogFormat string
	// UserID is the acting user for CLI commands.
	UserID string

	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string
	LocalMode      bool

	// Redis is optional; without it task locks are process-local.
	RedisURL string
	LockTTL  time.Duration
	LockWait time.Duration

	// RabbitMQ is optional; without it the worker dispatches in process.
	RabbitMQURL string

	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	WorkerHealthAddr string

	ScorePenaltyPerDay   int
	ScoreMinFloorPercent int
	DefaultMonthlyTarget int

	BreakerFailureThreshold int
	BreakerTimeout          time.Duration
}

// Load reads the configuration. Malformed values and out-of-range settings
// are reported together rather than silently replaced by defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var env reader
	cfg := &Config{
		AppEnv:    env.str("APP_ENV", "development"),
		LogLevel:  env.str("LOG_LEVEL", "info"),
		LogFormat: env.str("LOG_FORMAT", "text"),
		UserID:    env.str("PERFBOARD_USER_ID", ""),

		DatabaseURL: env.str("DATABASE_URL", ""),
		SQLitePath:  env.str("SQLITE_PATH", defaultSQLitePath()),

		RedisURL: env.str("REDIS_URL", ""),
		LockTTL:  env.duration("LOCK_TTL", 10*time.Second),
		LockWait: env.duration("LOCK_WAIT", 2*time.Second),

		RabbitMQURL: env.str("RABBITMQ_URL", ""),

		OutboxPollInterval:     env.duration("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		OutboxBatchSize:        env.int("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       env.int("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    env.duration("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxRetentionDays:    env.int("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  env.duration("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: env.bool("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr: env.str("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		ScorePenaltyPerDay:   env.int("SCORE_PENALTY_PER_DAY", 1),
		ScoreMinFloorPercent: env.int("SCORE_MIN_FLOOR_PERCENT", 20),
		DefaultMonthlyTarget: env.int("DEFAULT_MONTHLY_TARGET", 50),

		BreakerFailureThreshold: env.int("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeout:          env.duration("BREAKER_TIMEOUT", 30*time.Second),
	}

	driver, err := resolveDriver(env.str("DATABASE_DRIVER", ""), cfg.DatabaseURL)
	if err != nil {
		env.errs = append(env.errs, err)
	}
	cfg.DatabaseDriver = driver
	cfg.LocalMode = driver == "sqlite"

	if err := errors.Join(append(env.errs, cfg.Validate())...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that the scoring rules and the outbox
// relay cannot work around.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.ScorePenaltyPerDay >= 1, "SCORE_PENALTY_PER_DAY must be at least 1, got %d", c.ScorePenaltyPerDay)
	check(c.ScoreMinFloorPercent >= 0 && c.ScoreMinFloorPercent <= 100,
		"SCORE_MIN_FLOOR_PERCENT must be between 0 and 100, got %d", c.ScoreMinFloorPercent)
	check(c.DefaultMonthlyTarget > 0, "DEFAULT_MONTHLY_TARGET must be positive, got %d", c.DefaultMonthlyTarget)
	check(c.OutboxBatchSize > 0, "OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	check(c.OutboxPollInterval > 0, "OUTBOX_POLL_INTERVAL must be positive, got %s", c.OutboxPollInterval)
	check(c.LockTTL > 0, "LOCK_TTL must be positive, got %s", c.LockTTL)
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// UsesRedisLock reports whether per-task locks are shared through Redis.
func (c *Config) UsesRedisLock() bool { return c.RedisURL != "" }

// UsesBroker reports whether the worker publishes to RabbitMQ.
func (c *Config) UsesBroker() bool { return c.RabbitMQURL != "" }

func resolveDriver(explicit, url string) (string, error) {
	switch d := strings.ToLower(explicit); d {
	case "sqlite", "postgres":
		return d, nil
	case "", "auto":
		if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
			return "postgres", nil
		}
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_DRIVER %q", explicit)
	}
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".perfboard", "data.db")
	}
	return filepath.Join(home, ".perfboard", "data.db")
}

// reader looks up variables and remembers every value it could not parse.
type reader struct {
	errs []error
}

func (r *reader) str(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parse[T any](r *reader, key string, fallback T, parseFn func(string) (T, error)) T {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := parseFn(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid value %q", key, raw))
		return fallback
	}
	return v
}

func (r *reader) int(key string, fallback int) int {
	return parse(r, key, fallback, strconv.Atoi)
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	return parse(r, key, fallback, time.ParseDuration)
}

func (r *reader) bool(key string, fallback bool) bool {
	return parse(r, key, fallback, strconv.ParseBool)
}

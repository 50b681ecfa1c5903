package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/perfboard/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// ErrBrokerUnavailable is returned while the breaker is open and publishes
// are short-circuited.
var ErrBrokerUnavailable = errors.New("broker unavailable: circuit open")

// BreakerConfig configures the circuit breaker around a Publisher.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
	MaxRequests      uint32
	Interval         time.Duration
}

// DefaultBreakerConfig returns defaults matching the worker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "broker",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// BreakerPublisher stops hammering an unreachable broker. After
// FailureThreshold consecutive failures it fails fast until Timeout elapses,
// then lets MaxRequests probes through.
type BreakerPublisher struct {
	next    Publisher
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// NewBreakerPublisher wraps next with a circuit breaker.
func NewBreakerPublisher(next Publisher, cfg BreakerConfig, metrics observability.Metrics, logger *slog.Logger) *BreakerPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 1
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Counter(observability.MetricBreakerStateChange, 1,
				observability.T("breaker", name),
				observability.T("state", to.String()),
			)
		},
	}

	return &BreakerPublisher{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		logger:  logger,
	}
}

// Publish forwards to the wrapped publisher unless the breaker is open.
func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.next.Publish(ctx, routingKey, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrBrokerUnavailable, routingKey)
	}
	return err
}

// State reports the breaker state, e.g. "closed", "open" or "half-open".
func (p *BreakerPublisher) State() string {
	return p.breaker.State().String()
}

// Close closes the wrapped publisher.
func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}

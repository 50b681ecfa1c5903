package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// InProcessBus is a Publisher that routes events straight to local
// consumers. The worker uses it when no broker URL is configured.
type InProcessBus struct {
	router *Router
	logger *slog.Logger

	// serializes delivery so consumers see events in outbox order
	mu sync.Mutex
}

func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{router: NewRouter(logger), logger: logger}
}

// RegisterConsumer binds consumer to the patterns it declares.
func (b *InProcessBus) RegisterConsumer(consumer EventConsumer) {
	b.router.Bind(consumer)
}

// Publish decodes the payload and routes it. A consumer failure is returned
// so the outbox schedules a retry.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event, err := DecodeEvent(routingKey, payload)
	if err != nil {
		return fmt.Errorf("decode %s: %w", routingKey, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	err = b.router.Route(ctx, event)
	b.logger.Debug("event routed",
		"routing_key", routingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
		"ok", err == nil,
	)
	return err
}

// Bindings returns the number of consumer bindings.
func (b *InProcessBus) Bindings() int {
	return b.router.Len()
}

func (b *InProcessBus) Close() error { return nil }

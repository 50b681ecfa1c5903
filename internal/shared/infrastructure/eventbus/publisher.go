package eventbus

import (
	"context"
	"log/slog"
)

// Publisher delivers an encoded event under its routing key. The outbox
// processor treats a nil error as delivered.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

var (
	_ Publisher = (*RabbitMQPublisher)(nil)
	_ Publisher = (*BreakerPublisher)(nil)
	_ Publisher = (*InProcessBus)(nil)
	_ Publisher = (*NoopPublisher)(nil)
)

// NoopPublisher accepts and drops everything. Outside production the worker
// falls back to it when the broker cannot be reached.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("event dropped", "routing_key", routingKey, "size", len(payload))
	return nil
}

func (p *NoopPublisher) Close() error { return nil }

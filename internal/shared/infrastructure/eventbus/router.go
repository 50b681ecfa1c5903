package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

type binding struct {
	pattern  []string
	consumer EventConsumer
}

// Router binds consumers to routing-key patterns with RabbitMQ topic
// semantics: words are dot-separated, "*" matches exactly one word and "#"
// matches zero or more. In-process delivery therefore reaches the same
// consumers a broker queue bound with the same patterns would.
type Router struct {
	logger *slog.Logger

	mu       sync.RWMutex
	bindings []binding
}

// NewRouter creates an empty router.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{logger: logger}
}

// Bind subscribes consumer to each pattern it declares.
func (r *Router) Bind(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pattern := range consumer.EventTypes() {
		r.bindings = append(r.bindings, binding{pattern: strings.Split(pattern, "."), consumer: consumer})
		r.logger.Debug("consumer bound", "pattern", pattern)
	}
}

// Match returns the consumers bound to routingKey in binding order. A
// consumer bound through several matching patterns appears once.
func (r *Router) Match(routingKey string) []EventConsumer {
	key := strings.Split(routingKey, ".")

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []EventConsumer
	seen := make(map[EventConsumer]bool)
	for _, b := range r.bindings {
		if seen[b.consumer] || !topicMatch(b.pattern, key) {
			continue
		}
		seen[b.consumer] = true
		matched = append(matched, b.consumer)
	}
	return matched
}

// Route hands event to every matching consumer. All consumers run even
// when some fail; their errors are joined.
func (r *Router) Route(ctx context.Context, event *ConsumedEvent) error {
	var errs []error
	for _, consumer := range r.Match(event.RoutingKey) {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"consumer", fmt.Sprintf("%T", consumer),
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of bindings.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

func topicMatch(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	switch pattern[0] {
	case AllEvents:
		for skip := 0; skip <= len(key); skip++ {
			if topicMatch(pattern[1:], key[skip:]) {
				return true
			}
		}
		return false
	case "*":
		return len(key) > 0 && topicMatch(pattern[1:], key[1:])
	default:
		return len(key) > 0 && pattern[0] == key[0] && topicMatch(pattern[1:], key[1:])
	}
}

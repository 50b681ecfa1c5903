package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/google/uuid"
)

// AllEvents registers a consumer for every routing key.
const AllEvents = "#"

// EventConsumer handles specific event types.
type EventConsumer interface {
	// EventTypes returns the routing keys this consumer handles,
	// e.g. ["perf.task.claimed", "perf.task.approved"], or AllEvents.
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumedEvent is the envelope decoded from a published event payload.
// Payload keeps the full JSON document so consumers can decode the fields
// specific to their event type.
type ConsumedEvent struct {
	EventID       uuid.UUID            `json:"event_id"`
	AggregateID   string               `json:"aggregate_id"`
	AggregateType string               `json:"aggregate_type"`
	RoutingKey    string               `json:"routing_key"`
	OccurredAt    time.Time            `json:"occurred_at"`
	Metadata      domain.EventMetadata `json:"metadata"`
	Payload       json.RawMessage      `json:"-"`
}

// DecodeEvent parses a published payload into a ConsumedEvent.
func DecodeEvent(routingKey string, payload []byte) (*ConsumedEvent, error) {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, err
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}
	event.Payload = append(json.RawMessage(nil), payload...)
	return event, nil
}

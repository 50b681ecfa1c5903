package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents something that happened in the domain.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() string
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata contains tracing and context information for events.
type EventMetadata struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	CausationID   uuid.UUID `json:"causation_id"`
	ActorID       string    `json:"actor_id,omitempty"`
}

// BaseEvent provides common event functionality.
// Exported JSON fields keep the envelope visible in outbox payloads.
type BaseEvent struct {
	ID      uuid.UUID     `json:"event_id"`
	AggID   string        `json:"aggregate_id"`
	AggType string        `json:"aggregate_type"`
	Key     string        `json:"routing_key"`
	At      time.Time     `json:"occurred_at"`
	Meta    EventMetadata `json:"metadata"`
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(aggregateID, aggregateType, routingKey string, at time.Time) BaseEvent {
	return BaseEvent{
		ID:      uuid.New(),
		AggID:   aggregateID,
		AggType: aggregateType,
		Key:     routingKey,
		At:      at.UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.ID }
func (e BaseEvent) AggregateID() string     { return e.AggID }
func (e BaseEvent) AggregateType() string   { return e.AggType }
func (e BaseEvent) RoutingKey() string      { return e.Key }
func (e BaseEvent) OccurredAt() time.Time   { return e.At }
func (e BaseEvent) Metadata() EventMetadata { return e.Meta }

// SetMetadata sets the event metadata.
func (e *BaseEvent) SetMetadata(metadata EventMetadata) {
	e.Meta = metadata
}

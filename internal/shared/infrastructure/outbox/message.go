package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/google/uuid"
)

// Message is one domain event waiting in the outbox table. Payload is the
// JSON-encoded event and is published as is.
type Message struct {
	ID            int64
	EventID       uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	RoutingKey    string
	Payload       json.RawMessage
	Metadata      json.RawMessage
	CreatedAt     time.Time

	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage encodes a domain event for the outbox.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event.RoutingKey(), err)
	}
	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, fmt.Errorf("encode %s metadata: %w", event.RoutingKey(), err)
	}

	key := event.RoutingKey()
	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     key,
		RoutingKey:    key,
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// NewMessages encodes a batch and fails on the first event that cannot be encoded.
func NewMessages(events []domain.DomainEvent) ([]*Message, error) {
	msgs := make([]*Message, len(events))
	for i, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return nil, err
		}
		msgs[i] = msg
	}
	return msgs, nil
}

// IsPublished reports whether the relay has delivered the message.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry reports whether one more failed attempt still leaves the message
// eligible for redelivery under maxAttempts.
func (m *Message) CanRetry(maxAttempts int) bool {
	return m.RetryCount+1 < maxAttempts
}

// trace pulls the correlation fields out of the stored metadata for logging.
func (m *Message) trace() []any {
	fields := []any{"id", m.ID, "event_id", m.EventID, "routing_key", m.RoutingKey}
	if len(m.Metadata) == 0 {
		return fields
	}
	var meta domain.EventMetadata
	if err := json.Unmarshal(m.Metadata, &meta); err != nil {
		return fields
	}
	return append(fields,
		"correlation_id", meta.CorrelationID.String(),
		"causation_id", meta.CausationID.String(),
		"actor_id", meta.ActorID,
	)
}

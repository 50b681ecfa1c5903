package application

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata creates command-scoped metadata for domain events.
func NewEventMetadata(actorID string) domain.EventMetadata {
	return domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		ActorID:       actorID,
	}
}

// EventMetadataFromContext ties the events of one command to the trace
// carried by ctx: its correlation id when that is a valid UUID, and its
// actor when actorID is empty.
func EventMetadataFromContext(ctx context.Context, actorID string) domain.EventMetadata {
	trace := observability.TraceFromContext(ctx)
	if actorID == "" {
		actorID = trace.ActorID
	}
	metadata := NewEventMetadata(actorID)
	if id, err := uuid.Parse(trace.CorrelationID); err == nil {
		metadata.CorrelationID = id
	}
	return metadata
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}

package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	event := domain.NewBaseEvent("task-1", "Task", "perf.task.claimed", fixedNow)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "task-1", event.AggregateID())
	assert.Equal(t, "Task", event.AggregateType())
	assert.Equal(t, "perf.task.claimed", event.RoutingKey())
	assert.Equal(t, fixedNow, event.OccurredAt())
}

func TestBaseEvent_WithMetadata(t *testing.T) {
	correlationID := uuid.New()
	causationID := uuid.New()

	event := domain.NewBaseEvent("task-1", "Task", "perf.task.claimed", fixedNow)
	event.SetMetadata(domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   causationID,
		ActorID:       "dev-A",
	})

	metadata := event.Metadata()
	assert.Equal(t, correlationID, metadata.CorrelationID)
	assert.Equal(t, causationID, metadata.CausationID)
	assert.Equal(t, "dev-A", metadata.ActorID)
}

func TestBaseEvent_JSONEnvelope(t *testing.T) {
	event := domain.NewBaseEvent("task-1", "Task", "perf.task.claimed", fixedNow)

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "task-1", decoded["aggregate_id"])
	assert.Equal(t, "perf.task.claimed", decoded["routing_key"])
}

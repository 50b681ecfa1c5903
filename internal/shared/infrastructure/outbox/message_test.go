package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskClaimed struct {
	domain.BaseEvent
	AssigneeID string `json:"assignee_id"`
}

func newTaskClaimed(taskID, assigneeID string) *taskClaimed {
	at := time.Date(2024, 11, 4, 10, 0, 0, 0, time.UTC)
	return &taskClaimed{
		BaseEvent:  domain.NewBaseEvent(taskID, "Task", "perf.task.claimed", at),
		AssigneeID: assigneeID,
	}
}

func TestNewMessage(t *testing.T) {
	t.Run("copies event identity", func(t *testing.T) {
		event := newTaskClaimed("task-1", "dev-1")

		msg, err := NewMessage(event)
		require.NoError(t, err)

		assert.Zero(t, msg.ID)
		assert.Equal(t, event.EventID(), msg.EventID)
		assert.Equal(t, "Task", msg.AggregateType)
		assert.Equal(t, "task-1", msg.AggregateID)
		assert.Equal(t, "perf.task.claimed", msg.EventType)
		assert.Equal(t, "perf.task.claimed", msg.RoutingKey)
		assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
		assert.False(t, msg.IsPublished())
	})

	t.Run("serializes payload and metadata", func(t *testing.T) {
		event := newTaskClaimed("task-1", "dev-1")
		event.SetMetadata(domain.EventMetadata{CorrelationID: uuid.New(), ActorID: "dev-1"})

		msg, err := NewMessage(event)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "dev-1", payload["assignee_id"])
		assert.Equal(t, "task-1", payload["aggregate_id"])

		var meta domain.EventMetadata
		require.NoError(t, json.Unmarshal(msg.Metadata, &meta))
		assert.Equal(t, "dev-1", meta.ActorID)
	})
}

func TestNewMessages(t *testing.T) {
	events := []domain.DomainEvent{
		newTaskClaimed("task-1", "dev-1"),
		newTaskClaimed("task-2", "dev-2"),
	}

	msgs, err := NewMessages(events)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "task-2", msgs[1].AggregateID)

	empty, err := NewMessages(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessage_CanRetry(t *testing.T) {
	tests := []struct {
		name       string
		retryCount int
		maxRetries int
		expected   bool
	}{
		{"first failure of three attempts", 0, 3, true},
		{"second failure of three attempts", 1, 3, true},
		{"last attempt", 2, 3, false},
		{"already past the limit", 5, 3, false},
		{"single attempt", 0, 1, false},
		{"retries disabled", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{RetryCount: tt.retryCount}
			assert.Equal(t, tt.expected, msg.CanRetry(tt.maxRetries))
		})
	}
}

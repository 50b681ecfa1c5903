package subscribers

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

// DefaultActivityCapacity is how many entries the activity feed keeps.
const DefaultActivityCapacity = 200

// Activity is one line of the activity feed.
type Activity struct {
	EventID     string    `json:"event_id"`
	RoutingKey  string    `json:"routing_key"`
	AggregateID string    `json:"aggregate_id"`
	ActorID     string    `json:"actor_id,omitempty"`
	ProjectID   string    `json:"project_id,omitempty"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	FinalScore  *int      `json:"final_score,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// activityPayload holds the fields shared by the task events that the feed shows.
type activityPayload struct {
	ProjectID  string `json:"project_id"`
	AssigneeID string `json:"assignee_id"`
	ActorID    string `json:"actor_id"`
	ApproverID string `json:"approver_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	FinalScore *int   `json:"final_score"`
}

// ActivitySubscriber records every published event in a bounded feed and
// logs task lifecycle changes.
type ActivitySubscriber struct {
	logger   *slog.Logger
	metrics  observability.Metrics
	capacity int

	mu   sync.RWMutex
	feed []Activity
}

// NewActivitySubscriber creates a new activity subscriber.
func NewActivitySubscriber(logger *slog.Logger, metrics observability.Metrics, capacity int) *ActivitySubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivitySubscriber{
		logger:   logger,
		metrics:  metrics,
		capacity: capacity,
	}
}

// EventTypes subscribes to every performance event.
func (s *ActivitySubscriber) EventTypes() []string {
	return []string{"perf.#"}
}

// Handle appends the event to the feed.
func (s *ActivitySubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload activityPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		// Envelope already decoded; keep the line without details.
		s.logger.DebugContext(ctx, "activity payload not decodable",
			"routing_key", event.RoutingKey,
			"error", err,
		)
	}

	actor := event.Metadata.ActorID
	if actor == "" {
		actor = payload.ActorID
	}
	if actor == "" {
		actor = payload.ApproverID
	}

	entry := Activity{
		EventID:     event.EventID.String(),
		RoutingKey:  event.RoutingKey,
		AggregateID: event.AggregateID,
		ActorID:     actor,
		ProjectID:   payload.ProjectID,
		AssigneeID:  payload.AssigneeID,
		From:        payload.From,
		To:          payload.To,
		FinalScore:  payload.FinalScore,
		OccurredAt:  event.OccurredAt,
	}
	s.append(entry)
	s.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))

	switch event.RoutingKey {
	case task.RoutingKeyApproved:
		attrs := []any{"task_id", event.AggregateID, "assignee_id", entry.AssigneeID, "approver_id", actor}
		if entry.FinalScore != nil {
			attrs = append(attrs, "final_score", *entry.FinalScore)
		}
		s.logger.InfoContext(ctx, "task approved", attrs...)
	case task.RoutingKeyClaimed:
		s.logger.InfoContext(ctx, "task claimed", "task_id", event.AggregateID, "assignee_id", entry.AssigneeID)
	default:
		s.logger.DebugContext(ctx, "activity recorded",
			"routing_key", event.RoutingKey,
			"aggregate_id", event.AggregateID,
		)
	}
	return nil
}

func (s *ActivitySubscriber) append(entry Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = append(s.feed, entry)
	if over := len(s.feed) - s.capacity; over > 0 {
		s.feed = append([]Activity(nil), s.feed[over:]...)
	}
}

// Recent returns up to limit entries, newest first. A non-positive limit returns all.
func (s *ActivitySubscriber) Recent(limit int) []Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.feed)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Activity, 0, n)
	for i := len(s.feed) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.feed[i])
	}
	return out
}

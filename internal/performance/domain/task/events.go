package task

import (
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated   = "perf.task.created"
	RoutingKeyClaimed   = "perf.task.claimed"
	RoutingKeyStarted   = "perf.task.started"
	RoutingKeySubmitted = "perf.task.submitted"
	RoutingKeyApproved  = "perf.task.approved"
	RoutingKeyRejected  = "perf.task.rejected"
	RoutingKeyBlocked   = "perf.task.blocked"
	RoutingKeyUnblocked = "perf.task.unblocked"
)

// TaskCreated is emitted when a PM creates a task.
type TaskCreated struct {
	domain.BaseEvent
	ProjectID   string `json:"project_id"`
	CreatorID   string `json:"creator_id"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	Title       string `json:"title"`
	StoryPoints int    `json:"story_points"`
	BaseScore   int    `json:"base_score"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
}

// TaskClaimed is emitted when a developer claims an available task.
type TaskClaimed struct {
	domain.BaseEvent
	ProjectID  string    `json:"project_id"`
	AssigneeID string    `json:"assignee_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// TaskStatusChanged carries the transitions that only move the status:
// start, submit, reject, block and unblock.
type TaskStatusChanged struct {
	domain.BaseEvent
	ProjectID string `json:"project_id"`
	ActorID   string `json:"actor_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Reason    string `json:"reason,omitempty"`
}

// TaskApproved is emitted when a task completes and its score is stamped.
type TaskApproved struct {
	domain.BaseEvent
	ProjectID    string    `json:"project_id"`
	AssigneeID   string    `json:"assignee_id"`
	ApproverID   string    `json:"approver_id"`
	CompletedAt  time.Time `json:"completed_at"`
	BaseScore    int       `json:"base_score"`
	DaysLate     int       `json:"days_late"`
	DelayPenalty int       `json:"delay_penalty"`
	FinalScore   int       `json:"final_score"`
	Overridden   bool      `json:"overridden"`
}

func newTaskCreated(t *Task, at time.Time) *TaskCreated {
	return &TaskCreated{
		BaseEvent:   domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyCreated, at),
		ProjectID:   t.projectID,
		CreatorID:   t.creatorID,
		AssigneeID:  t.assigneeID,
		Title:       t.title,
		StoryPoints: int(t.storyPoints),
		BaseScore:   t.baseScore,
		DueDate:     t.dueDate.String(),
		Status:      t.status.String(),
	}
}

func newTaskClaimed(t *Task, at time.Time) *TaskClaimed {
	return &TaskClaimed{
		BaseEvent:  domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyClaimed, at),
		ProjectID:  t.projectID,
		AssigneeID: t.assigneeID,
		AssignedAt: at,
	}
}

func newStatusChanged(t *Task, routingKey, actorID string, from Status, at time.Time) *TaskStatusChanged {
	return &TaskStatusChanged{
		BaseEvent: domain.NewBaseEvent(t.ID(), AggregateType, routingKey, at),
		ProjectID: t.projectID,
		ActorID:   actorID,
		From:      from.String(),
		To:        t.status.String(),
		Reason:    t.blockReason,
	}
}

func newTaskApproved(t *Task, approverID string, at time.Time) *TaskApproved {
	return &TaskApproved{
		BaseEvent:    domain.NewBaseEvent(t.ID(), AggregateType, RoutingKeyApproved, at),
		ProjectID:    t.projectID,
		AssigneeID:   t.assigneeID,
		ApproverID:   approverID,
		CompletedAt:  at,
		BaseScore:    t.baseScore,
		DaysLate:     t.score.DaysLate,
		DelayPenalty: t.score.DelayPenalty,
		FinalScore:   t.score.FinalScore,
		Overridden:   t.score.Overridden,
	}
}

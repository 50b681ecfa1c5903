package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// StartTaskCommand contains the data needed to start a task.
type StartTaskCommand struct {
	TaskID   string
	CallerID string
}

// StartTaskHandler moves a todo task into progress for its assignee.
type StartTaskHandler struct {
	taskCommand
}

// NewStartTaskHandler creates a new StartTaskHandler.
func NewStartTaskHandler(deps TaskDependencies) *StartTaskHandler {
	return &StartTaskHandler{taskCommand{deps: deps}}
}

// Handle executes the StartTaskCommand.
func (h *StartTaskHandler) Handle(ctx context.Context, cmd StartTaskCommand) (*queries.TaskDTO, error) {
	return h.mutate(ctx, cmd.TaskID, cmd.CallerID, func(_ context.Context, t *task.Task, actor *member.User, now time.Time) ([]domain.DomainEvent, error) {
		return nil, t.Start(actor.ID(), now)
	})
}

// SubmitTaskCommand contains the data needed to submit a task for review.
type SubmitTaskCommand struct {
	TaskID   string
	CallerID string
}

// SubmitTaskHandler moves an in-progress task into review for its assignee.
type SubmitTaskHandler struct {
	taskCommand
}

// NewSubmitTaskHandler creates a new SubmitTaskHandler.
func NewSubmitTaskHandler(deps TaskDependencies) *SubmitTaskHandler {
	return &SubmitTaskHandler{taskCommand{deps: deps}}
}

// Handle executes the SubmitTaskCommand.
func (h *SubmitTaskHandler) Handle(ctx context.Context, cmd SubmitTaskCommand) (*queries.TaskDTO, error) {
	return h.mutate(ctx, cmd.TaskID, cmd.CallerID, func(_ context.Context, t *task.Task, actor *member.User, now time.Time) ([]domain.DomainEvent, error) {
		return nil, t.Submit(actor.ID(), now)
	})
}

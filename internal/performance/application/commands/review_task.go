package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

// ApproveTaskCommand contains the data needed to approve a task. Score and
// PenaltyPerDay are optional PM overrides.
type ApproveTaskCommand struct {
	TaskID        string
	ActorID       string
	Score         *int
	PenaltyPerDay *int
}

// ApproveTaskHandler completes a reviewed task, stamps its score and bumps the
// project's completed counter in the same unit of work.
type ApproveTaskHandler struct {
	taskCommand
}

// NewApproveTaskHandler creates a new ApproveTaskHandler.
func NewApproveTaskHandler(deps TaskDependencies) *ApproveTaskHandler {
	return &ApproveTaskHandler{taskCommand{deps: deps}}
}

// Handle executes the ApproveTaskCommand.
func (h *ApproveTaskHandler) Handle(ctx context.Context, cmd ApproveTaskCommand) (*queries.TaskDTO, error) {
	override := scoring.Override{Score: cmd.Score, PenaltyPerDay: cmd.PenaltyPerDay}

	result, err := h.mutate(ctx, cmd.TaskID, cmd.ActorID, func(txCtx context.Context, t *task.Task, actor *member.User, now time.Time) ([]domain.DomainEvent, error) {
		if err := requireManager(actor, "approving a task"); err != nil {
			return nil, err
		}
		if err := t.Approve(actor.ID(), h.deps.Policy, override, now); err != nil {
			return nil, err
		}
		return nil, h.deps.Projects.AdjustCounters(txCtx, t.ProjectID(), 0, 1)
	})
	if err != nil {
		return nil, err
	}

	h.deps.metrics().Counter(observability.MetricTasksCompleted, 1)
	if result.FinalScore != nil {
		h.deps.metrics().Histogram(observability.MetricScoreAwarded, float64(*result.FinalScore))
	}
	return result, nil
}

// RejectTaskCommand contains the data needed to send a task back for rework.
type RejectTaskCommand struct {
	TaskID  string
	ActorID string
}

// RejectTaskHandler returns a reviewed task to in progress.
type RejectTaskHandler struct {
	taskCommand
}

// NewRejectTaskHandler creates a new RejectTaskHandler.
func NewRejectTaskHandler(deps TaskDependencies) *RejectTaskHandler {
	return &RejectTaskHandler{taskCommand{deps: deps}}
}

// Handle executes the RejectTaskCommand.
func (h *RejectTaskHandler) Handle(ctx context.Context, cmd RejectTaskCommand) (*queries.TaskDTO, error) {
	return h.mutate(ctx, cmd.TaskID, cmd.ActorID, func(_ context.Context, t *task.Task, actor *member.User, now time.Time) ([]domain.DomainEvent, error) {
		if err := requireManager(actor, "rejecting a task"); err != nil {
			return nil, err
		}
		return nil, t.Reject(actor.ID(), now)
	})
}

// BlockTaskCommand contains the data needed to block a task.
type BlockTaskCommand struct {
	TaskID  string
	ActorID string
	Reason  string
}

// BlockTaskHandler parks an assigned task.
type BlockTaskHandler struct {
	taskCommand
}

// NewBlockTaskHandler creates a new BlockTaskHandler.
func NewBlockTaskHandler(deps TaskDependencies) *BlockTaskHandler {
	return &BlockTaskHandler{taskCommand{deps: deps}}
}

// Handle executes the BlockTaskCommand.
func (h *BlockTaskHandler) Handle(ctx context.Context, cmd BlockTaskCommand) (*queries.TaskDTO, error) {
	return h.mutate(ctx, cmd.TaskID, cmd.ActorID, func(_ context.Context, t *task.Task, actor *member.User, now time.Time) ([]domain.DomainEvent, error) {
		if err := requireManager(actor, "blocking a task"); err != nil {
			return nil, err
		}
		return nil, t.Block(actor.ID(), cmd.Reason, now)
	})
}

// UnblockTaskCommand contains the data needed to unblock a task.
type UnblockTaskCommand struct {
	TaskID  string
	ActorID string
}

// UnblockTaskHandler returns a blocked task to where it was.
type UnblockTaskHandler struct {
	taskCommand
}

// NewUnblockTaskHandler creates a new UnblockTaskHandler.
func NewUnblockTaskHandler(deps TaskDependencies) *UnblockTaskHandler {
	return &UnblockTaskHandler{taskCommand{deps: deps}}
}

// Handle executes the UnblockTaskCommand.
func (h *UnblockTaskHandler) Handle(ctx context.Context, cmd UnblockTaskCommand) (*queries.TaskDTO, error) {
	return h.mutate(ctx, cmd.TaskID, cmd.ActorID, func(_ context.Context, t *task.Task, actor *member.User, now time.Time) ([]domain.DomainEvent, error) {
		if err := requireManager(actor, "unblocking a task"); err != nil {
			return nil, err
		}
		return nil, t.Unblock(actor.ID(), now)
	})
}

package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

// ClaimTaskCommand contains the data needed to claim a task.
type ClaimTaskCommand struct {
	TaskID string
	UserID string
}

// ClaimTaskHandler handles the ClaimTaskCommand. Of several concurrent claims
// on one available task exactly one succeeds; the others fail with
// domain.ErrTaskUnavailable.
type ClaimTaskHandler struct {
	taskCommand
}

// NewClaimTaskHandler creates a new ClaimTaskHandler.
func NewClaimTaskHandler(deps TaskDependencies) *ClaimTaskHandler {
	return &ClaimTaskHandler{taskCommand{deps: deps}}
}

// Handle executes the ClaimTaskCommand.
func (h *ClaimTaskHandler) Handle(ctx context.Context, cmd ClaimTaskCommand) (*queries.TaskDTO, error) {
	result, err := h.mutate(ctx, cmd.TaskID, cmd.UserID, func(_ context.Context, t *task.Task, actor *member.User, now time.Time) ([]domain.DomainEvent, error) {
		if !actor.Role().CanClaim() {
			return nil, domain.Forbiddenf("only developers may claim tasks, user %s is %s", actor.ID(), actor.Role())
		}
		return nil, t.Claim(actor.ID(), now)
	})
	if err != nil {
		err = asUnavailable(cmd.TaskID, err)
		if domain.KindOf(err) == domain.ErrTaskUnavailable {
			h.deps.metrics().Counter(observability.MetricClaimConflicts, 1)
		}
		return nil, err
	}

	h.deps.metrics().Counter(observability.MetricTasksClaimed, 1)
	return result, nil
}

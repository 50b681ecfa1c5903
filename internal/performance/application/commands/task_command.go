package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

// TaskDependencies bundles the collaborators shared by the task command handlers.
type TaskDependencies struct {
	Tasks      task.Repository
	Projects   project.Repository
	Users      member.UserRepository
	Outbox     outbox.Writer
	UnitOfWork sharedApplication.UnitOfWork
	Locker     lock.Locker
	Policy     scoring.Policy
	Clock      sharedApplication.Clock
	Metrics    observability.Metrics
}

func (d TaskDependencies) metrics() observability.Metrics {
	if d.Metrics == nil {
		return observability.NoopMetrics{}
	}
	return d.Metrics
}

// transition applies one lifecycle edge to a freshly loaded task. It may
// return events from other aggregates it changed in the same unit of work.
type transition func(ctx context.Context, t *task.Task, actor *member.User, now time.Time) ([]domain.DomainEvent, error)

type taskCommand struct {
	deps TaskDependencies
}

// mutate serializes on the task id, then loads the actor and task, applies fn
// and persists the task with its events inside one unit of work.
func (c taskCommand) mutate(ctx context.Context, taskID, actorID string, fn transition) (*queries.TaskDTO, error) {
	var result *queries.TaskDTO

	err := lock.WithLock(ctx, c.deps.Locker, lock.TaskKey(taskID), func(ctx context.Context) error {
		return sharedApplication.WithUnitOfWork(ctx, c.deps.UnitOfWork, func(txCtx context.Context) error {
			actor, err := c.deps.Users.FindByID(txCtx, actorID)
			if err != nil {
				return err
			}
			t, err := c.deps.Tasks.FindByID(txCtx, taskID)
			if err != nil {
				return err
			}

			now := c.deps.Clock.Now()
			extra, err := fn(txCtx, t, actor, now)
			if err != nil {
				return err
			}

			if err := c.deps.Tasks.Save(txCtx, t); err != nil {
				return err
			}

			events := append(t.DomainEvents(), extra...)
			if err := saveEvents(txCtx, c.deps.Outbox, actorID, events); err != nil {
				return err
			}
			t.ClearDomainEvents()

			result = queries.NewTaskDTO(t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// saveEvents stamps command metadata on events and records them in the outbox.
func saveEvents(ctx context.Context, outboxRepo outbox.Writer, actorID string, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.EventMetadataFromContext(ctx, actorID))

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	return outboxRepo.SaveBatch(ctx, msgs)
}

func requireManager(actor *member.User, operation string) error {
	if !actor.Role().IsManagerial() {
		return domain.Forbiddenf("%s requires a managerial role, user %s is %s", operation, actor.ID(), actor.Role())
	}
	return nil
}

// asUnavailable maps lost races on a claim to the task-unavailable kind.
func asUnavailable(taskID string, err error) error {
	switch {
	case errors.Is(err, lock.ErrNotAcquired), errors.Is(err, domain.ErrConcurrentModification):
		return &domain.Error{Kind: domain.ErrTaskUnavailable, Msg: fmt.Sprintf("task %s was claimed concurrently", taskID)}
	default:
		return err
	}
}

package commands

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/outbox"
)

// ReconcileProjectCommand asks for a project's cached counters to be recomputed.
type ReconcileProjectCommand struct {
	ActorID   string
	ProjectID string
}

// ReconcileProjectResult reports the counters after reconciliation.
type ReconcileProjectResult struct {
	Project queries.ProjectDTO
	Changed bool
}

// ReconcileProjectHandler recounts a project's tasks and overwrites the cache.
type ReconcileProjectHandler struct {
	projectRepo project.Repository
	taskRepo    task.Repository
	userRepo    member.UserRepository
	outboxRepo  outbox.Writer
	uow         sharedApplication.UnitOfWork
	clock       sharedApplication.Clock
}

// NewReconcileProjectHandler creates a new ReconcileProjectHandler.
func NewReconcileProjectHandler(
	projectRepo project.Repository,
	taskRepo task.Repository,
	userRepo member.UserRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	clock sharedApplication.Clock,
) *ReconcileProjectHandler {
	return &ReconcileProjectHandler{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		clock:       clock,
	}
}

// Handle executes the ReconcileProjectCommand.
func (h *ReconcileProjectHandler) Handle(ctx context.Context, cmd ReconcileProjectCommand) (*ReconcileProjectResult, error) {
	var result *ReconcileProjectResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		actor, err := h.userRepo.FindByID(txCtx, cmd.ActorID)
		if err != nil {
			return err
		}
		if err := requireManager(actor, "reconciling a project"); err != nil {
			return err
		}

		p, err := h.projectRepo.FindByID(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		total, completed, err := h.taskRepo.CountByProject(txCtx, p.ID())
		if err != nil {
			return err
		}

		changed, err := p.Reconcile(total, completed, h.clock.Now())
		if err != nil {
			return err
		}
		if changed {
			if err := h.projectRepo.Save(txCtx, p); err != nil {
				return err
			}
			if err := saveEvents(txCtx, h.outboxRepo, actor.ID(), p.DomainEvents()); err != nil {
				return err
			}
			p.ClearDomainEvents()
		}

		result = &ReconcileProjectResult{Project: *queries.NewProjectDTO(p), Changed: changed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

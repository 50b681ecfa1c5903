package commands

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/outbox"
)

// CreateProjectCommand contains the data needed to create a project.
type CreateProjectCommand struct {
	ActorID     string
	ProjectID   string
	Name        string
	Description string
	TeamID      string
	Status      string
	StartDate   string
	EndDate     string
}

// CreateProjectHandler handles the CreateProjectCommand.
type CreateProjectHandler struct {
	projectRepo project.Repository
	userRepo    member.UserRepository
	teamRepo    member.TeamRepository
	outboxRepo  outbox.Writer
	uow         sharedApplication.UnitOfWork
	clock       sharedApplication.Clock
}

// NewCreateProjectHandler creates a new CreateProjectHandler.
func NewCreateProjectHandler(
	projectRepo project.Repository,
	userRepo member.UserRepository,
	teamRepo member.TeamRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	clock sharedApplication.Clock,
) *CreateProjectHandler {
	return &CreateProjectHandler{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		teamRepo:    teamRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		clock:       clock,
	}
}

// Handle executes the CreateProjectCommand.
func (h *CreateProjectHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (*queries.ProjectDTO, error) {
	start, err := parseOptionalDate("start date", cmd.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate("end date", cmd.EndDate)
	if err != nil {
		return nil, err
	}

	var result *queries.ProjectDTO

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		actor, err := h.userRepo.FindByID(txCtx, cmd.ActorID)
		if err != nil {
			return err
		}
		if err := requireManager(actor, "creating a project"); err != nil {
			return err
		}
		if cmd.TeamID != "" {
			if _, err := h.teamRepo.FindByID(txCtx, cmd.TeamID); err != nil {
				return err
			}
		}

		p, err := project.New(project.Spec{
			ID:          cmd.ProjectID,
			Name:        cmd.Name,
			Description: cmd.Description,
			TeamID:      cmd.TeamID,
			Status:      cmd.Status,
			StartDate:   start,
			EndDate:     end,
		}, h.clock.Now())
		if err != nil {
			return err
		}

		if err := h.projectRepo.Save(txCtx, p); err != nil {
			return err
		}
		if err := saveEvents(txCtx, h.outboxRepo, actor.ID(), p.DomainEvents()); err != nil {
			return err
		}
		p.ClearDomainEvents()

		result = queries.NewProjectDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func parseOptionalDate(field, s string) (calendar.Date, error) {
	if s == "" {
		return calendar.Date{}, nil
	}
	d, err := calendar.ParseDate(s)
	if err != nil {
		return calendar.Date{}, domain.InvalidSpecf("%s must be formatted YYYY-MM-DD, got %q", field, s)
	}
	return d, nil
}

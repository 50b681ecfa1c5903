package commands

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/outbox"
)

// CreateTeamCommand contains the data needed to create a team.
type CreateTeamCommand struct {
	ActorID   string
	TeamID    string
	Name      string
	ManagerID string
}

// CreateTeamResult contains the result of creating a team.
type CreateTeamResult struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

// CreateTeamHandler handles the CreateTeamCommand.
type CreateTeamHandler struct {
	teamRepo   member.TeamRepository
	outboxRepo outbox.Writer
	uow        sharedApplication.UnitOfWork
	clock      sharedApplication.Clock
}

// NewCreateTeamHandler creates a new CreateTeamHandler.
func NewCreateTeamHandler(teamRepo member.TeamRepository, outboxRepo outbox.Writer, uow sharedApplication.UnitOfWork, clock sharedApplication.Clock) *CreateTeamHandler {
	return &CreateTeamHandler{
		teamRepo:   teamRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		clock:      clock,
	}
}

// Handle executes the CreateTeamCommand.
func (h *CreateTeamHandler) Handle(ctx context.Context, cmd CreateTeamCommand) (*CreateTeamResult, error) {
	var result *CreateTeamResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		team, err := member.NewTeam(cmd.TeamID, cmd.Name, cmd.ManagerID, h.clock.Now())
		if err != nil {
			return err
		}
		if err := h.teamRepo.Save(txCtx, team); err != nil {
			return err
		}
		if err := saveEvents(txCtx, h.outboxRepo, cmd.ActorID, team.DomainEvents()); err != nil {
			return err
		}
		team.ClearDomainEvents()

		result = &CreateTeamResult{TeamID: team.ID(), Name: team.Name()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

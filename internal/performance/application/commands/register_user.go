package commands

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/outbox"
)

// RegisterUserCommand contains the data needed to register a user.
type RegisterUserCommand struct {
	UserID        string
	Name          string
	Email         string
	Role          string
	TeamID        string
	MonthlyTarget int
}

// UserDTO is the transfer form of a registered user.
type UserDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	TeamID        string `json:"team_id,omitempty"`
	MonthlyTarget int    `json:"monthly_target"`
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	userRepo      member.UserRepository
	teamRepo      member.TeamRepository
	outboxRepo    outbox.Writer
	uow           sharedApplication.UnitOfWork
	clock         sharedApplication.Clock
	defaultTarget int
}

// NewRegisterUserHandler creates a new RegisterUserHandler. defaultTarget
// applies to users registered without a monthly target.
func NewRegisterUserHandler(
	userRepo member.UserRepository,
	teamRepo member.TeamRepository,
	outboxRepo outbox.Writer,
	uow sharedApplication.UnitOfWork,
	clock sharedApplication.Clock,
	defaultTarget int,
) *RegisterUserHandler {
	return &RegisterUserHandler{
		userRepo:      userRepo,
		teamRepo:      teamRepo,
		outboxRepo:    outboxRepo,
		uow:           uow,
		clock:         clock,
		defaultTarget: defaultTarget,
	}
}

// Handle executes the RegisterUserCommand.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*UserDTO, error) {
	var result *UserDTO

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if cmd.TeamID != "" {
			if _, err := h.teamRepo.FindByID(txCtx, cmd.TeamID); err != nil {
				return err
			}
		}

		u, err := member.NewUser(member.UserSpec{
			ID:            cmd.UserID,
			Name:          cmd.Name,
			Email:         cmd.Email,
			Role:          cmd.Role,
			TeamID:        cmd.TeamID,
			MonthlyTarget: cmd.MonthlyTarget,
		}, h.defaultTarget, h.clock.Now())
		if err != nil {
			return err
		}

		if err := h.userRepo.Save(txCtx, u); err != nil {
			return err
		}
		if err := saveEvents(txCtx, h.outboxRepo, u.ID(), u.DomainEvents()); err != nil {
			return err
		}
		u.ClearDomainEvents()

		result = &UserDTO{
			ID:            u.ID(),
			Name:          u.Name(),
			Email:         u.Email(),
			Role:          string(u.Role()),
			TeamID:        u.TeamID(),
			MonthlyTarget: u.MonthlyTarget(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

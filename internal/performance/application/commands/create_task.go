package commands

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	ActorID     string
	TaskID      string
	ProjectID   string
	AssigneeID  string
	Title       string
	Description string
	StoryPoints int
	Difficulty  string
	Priority    string
	DueDate     string
	Tags        []string
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	deps TaskDependencies
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(deps TaskDependencies) *CreateTaskHandler {
	return &CreateTaskHandler{deps: deps}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*queries.TaskDTO, error) {
	due, err := calendar.ParseDate(cmd.DueDate)
	if err != nil {
		return nil, domain.InvalidSpecf("due date must be formatted YYYY-MM-DD, got %q", cmd.DueDate)
	}

	var result *queries.TaskDTO

	err = sharedApplication.WithUnitOfWork(ctx, h.deps.UnitOfWork, func(txCtx context.Context) error {
		actor, err := h.deps.Users.FindByID(txCtx, cmd.ActorID)
		if err != nil {
			return err
		}
		if err := requireManager(actor, "creating a task"); err != nil {
			return err
		}

		p, err := h.deps.Projects.FindByID(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}

		if cmd.AssigneeID != "" {
			assignee, err := h.deps.Users.FindByID(txCtx, cmd.AssigneeID)
			if err != nil {
				return err
			}
			if assignee.Role() != member.RoleDeveloper {
				return domain.InvalidSpecf("tasks can only be assigned to developers, %s is %s", assignee.ID(), assignee.Role())
			}
		}

		t, err := task.New(task.Spec{
			ID:          cmd.TaskID,
			ProjectID:   p.ID(),
			CreatorID:   actor.ID(),
			AssigneeID:  cmd.AssigneeID,
			Title:       cmd.Title,
			Description: cmd.Description,
			StoryPoints: cmd.StoryPoints,
			Difficulty:  cmd.Difficulty,
			Priority:    cmd.Priority,
			DueDate:     due,
			Tags:        cmd.Tags,
		}, h.deps.Clock.Now())
		if err != nil {
			return err
		}

		if err := h.deps.Tasks.Save(txCtx, t); err != nil {
			return err
		}
		if err := h.deps.Projects.AdjustCounters(txCtx, p.ID(), 1, 0); err != nil {
			return err
		}
		if err := saveEvents(txCtx, h.deps.Outbox, actor.ID(), t.DomainEvents()); err != nil {
			return err
		}
		t.ClearDomainEvents()

		result = queries.NewTaskDTO(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.deps.metrics().Counter(observability.MetricTasksCreated, 1)
	return result, nil
}

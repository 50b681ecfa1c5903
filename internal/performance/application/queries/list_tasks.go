package queries

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
)

// DefaultUpcomingLimit is how many deadlines the upcoming view shows.
const DefaultUpcomingLimit = 5

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	ProjectID  string
	AssigneeID string
	Status     string // empty for every status
	Limit      int    // 0 = no limit
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle executes the ListTasksQuery.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	filter := task.Filter{
		ProjectID:  query.ProjectID,
		AssigneeID: query.AssigneeID,
		Limit:      query.Limit,
	}
	if query.Status != "" {
		status, err := task.ParseStatus(query.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	tasks, err := h.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newTaskDTOs(tasks), nil
}

// UpcomingDeadlinesQuery asks for the nearest due dates among unfinished tasks.
type UpcomingDeadlinesQuery struct {
	AssigneeID string
	Limit      int
}

// UpcomingDeadlinesHandler handles the UpcomingDeadlinesQuery.
type UpcomingDeadlinesHandler struct {
	taskRepo task.Repository
}

// NewUpcomingDeadlinesHandler creates a new UpcomingDeadlinesHandler.
func NewUpcomingDeadlinesHandler(taskRepo task.Repository) *UpcomingDeadlinesHandler {
	return &UpcomingDeadlinesHandler{taskRepo: taskRepo}
}

// Handle returns unfinished tasks ordered by due date, soonest first.
func (h *UpcomingDeadlinesHandler) Handle(ctx context.Context, query UpcomingDeadlinesQuery) ([]TaskDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	tasks, err := h.taskRepo.List(ctx, task.Filter{
		AssigneeID: query.AssigneeID,
		OpenOnly:   true,
		OrderByDue: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return newTaskDTOs(tasks), nil
}

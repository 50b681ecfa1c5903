package queries

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
)

// GetTaskQuery contains the parameters for fetching a single task.
type GetTaskQuery struct {
	TaskID string
}

// GetTaskHandler handles the GetTaskQuery.
type GetTaskHandler struct {
	taskRepo task.Repository
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(taskRepo task.Repository) *GetTaskHandler {
	return &GetTaskHandler{taskRepo: taskRepo}
}

// Handle executes the GetTaskQuery.
func (h *GetTaskHandler) Handle(ctx context.Context, query GetTaskQuery) (*TaskDTO, error) {
	t, err := h.taskRepo.FindByID(ctx, query.TaskID)
	if err != nil {
		return nil, err
	}
	return NewTaskDTO(t), nil
}

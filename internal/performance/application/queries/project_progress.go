package queries

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
)

// ProjectProgress compares the cached project counters with a fresh count.
type ProjectProgress struct {
	ProjectDTO
	RecomputedTasks     int  `json:"recomputed_tasks"`
	RecomputedCompleted int  `json:"recomputed_completed"`
	RecomputedProgress  int  `json:"recomputed_progress"`
	InSync              bool `json:"in_sync"`
}

// GetProjectProgressQuery selects the project.
type GetProjectProgressQuery struct {
	ProjectID string
}

// GetProjectProgressHandler handles the GetProjectProgressQuery.
type GetProjectProgressHandler struct {
	projectRepo project.Repository
	taskRepo    task.Repository
}

// NewGetProjectProgressHandler creates a new GetProjectProgressHandler.
func NewGetProjectProgressHandler(projectRepo project.Repository, taskRepo task.Repository) *GetProjectProgressHandler {
	return &GetProjectProgressHandler{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

// Handle executes the GetProjectProgressQuery.
func (h *GetProjectProgressHandler) Handle(ctx context.Context, query GetProjectProgressQuery) (*ProjectProgress, error) {
	p, err := h.projectRepo.FindByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	total, completed, err := h.taskRepo.CountByProject(ctx, p.ID())
	if err != nil {
		return nil, err
	}

	recomputed := scoring.ProjectProgress(completed, total)
	return &ProjectProgress{
		ProjectDTO:          *NewProjectDTO(p),
		RecomputedTasks:     total,
		RecomputedCompleted: completed,
		RecomputedProgress:  recomputed,
		InSync:              total == p.TasksCount() && completed == p.CompletedTasksCount(),
	}, nil
}

// ListProjectsHandler lists every project with its cached progress.
type ListProjectsHandler struct {
	projectRepo project.Repository
}

// NewListProjectsHandler creates a new ListProjectsHandler.
func NewListProjectsHandler(projectRepo project.Repository) *ListProjectsHandler {
	return &ListProjectsHandler{projectRepo: projectRepo}
}

// Handle returns all projects.
func (h *ListProjectsHandler) Handle(ctx context.Context) ([]ProjectDTO, error) {
	projects, err := h.projectRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		out = append(out, *NewProjectDTO(p))
	}
	return out, nil
}

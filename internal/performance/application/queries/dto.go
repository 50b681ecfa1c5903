package queries

import (
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID              string     `json:"id"`
	ProjectID       string     `json:"project_id"`
	CreatorID       string     `json:"creator_id"`
	AssigneeID      string     `json:"assignee_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	StoryPoints     int        `json:"story_points"`
	Difficulty      string     `json:"difficulty"`
	Priority        string     `json:"priority"`
	BaseScore       int        `json:"base_score"`
	DueDate         string     `json:"due_date"`
	Tags            []string   `json:"tags"`
	Status          string     `json:"status"`
	BlockedFrom     string     `json:"blocked_from,omitempty"`
	BlockReason     string     `json:"block_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	AssignedAt      *time.Time `json:"assigned_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	FinalScore      *int       `json:"final_score,omitempty"`
	DelayPenalty    *int       `json:"delay_penalty,omitempty"`
	DaysLate        *int       `json:"days_late,omitempty"`
	ScoreOverridden bool       `json:"score_overridden,omitempty"`
	Version         int        `json:"version"`
}

// NewTaskDTO maps a task aggregate to its transfer form.
func NewTaskDTO(t *task.Task) *TaskDTO {
	dto := &TaskDTO{
		ID:          t.ID(),
		ProjectID:   t.ProjectID(),
		CreatorID:   t.CreatorID(),
		AssigneeID:  t.AssigneeID(),
		Title:       t.Title(),
		Description: t.Description(),
		StoryPoints: int(t.StoryPoints()),
		Difficulty:  string(t.Difficulty()),
		Priority:    string(t.Priority()),
		BaseScore:   t.BaseScore(),
		DueDate:     t.DueDate().String(),
		Tags:        t.Tags(),
		Status:      t.Status().String(),
		BlockReason: t.BlockReason(),
		CreatedAt:   t.CreatedAt(),
		AssignedAt:  t.AssignedAt(),
		CompletedAt: t.CompletedAt(),
		Version:     t.Version(),
	}
	if t.Status() == task.StatusBlocked {
		dto.BlockedFrom = t.BlockedFrom().String()
	}
	if score := t.Score(); score != nil {
		final, penalty, late := score.FinalScore, score.DelayPenalty, score.DaysLate
		dto.FinalScore = &final
		dto.DelayPenalty = &penalty
		dto.DaysLate = &late
		dto.ScoreOverridden = score.Overridden
	}
	return dto
}

func newTaskDTOs(tasks []*task.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *NewTaskDTO(t))
	}
	return out
}

// ProjectDTO is a data transfer object for projects.
type ProjectDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	TeamID              string `json:"team_id,omitempty"`
	Status              string `json:"status"`
	StartDate           string `json:"start_date,omitempty"`
	EndDate             string `json:"end_date,omitempty"`
	TasksCount          int    `json:"tasks_count"`
	CompletedTasksCount int    `json:"completed_tasks_count"`
	Progress            int    `json:"progress"`
}

// NewProjectDTO maps a project aggregate to its transfer form.
func NewProjectDTO(p *project.Project) *ProjectDTO {
	return &ProjectDTO{
		ID:                  p.ID(),
		Name:                p.Name(),
		Description:         p.Description(),
		TeamID:              p.TeamID(),
		Status:              string(p.Status()),
		StartDate:           p.StartDate().String(),
		EndDate:             p.EndDate().String(),
		TasksCount:          p.TasksCount(),
		CompletedTasksCount: p.CompletedTasksCount(),
		Progress:            p.Progress(),
	}
}

package task

import (
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// Snapshot is the persisted form of a task.
type Snapshot struct {
	ID          string
	ProjectID   string
	CreatorID   string
	AssigneeID  string
	Title       string
	Description string
	StoryPoints StoryPoints
	Difficulty  Difficulty
	Priority    Priority
	BaseScore   int
	DueDate     calendar.Date
	Tags        []string
	Status      Status
	BlockedFrom Status
	BlockReason string
	AssignedAt  *time.Time
	CompletedAt *time.Time
	Score       *scoring.Result
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot captures the task state for a repository.
func (t *Task) Snapshot() Snapshot {
	var score *scoring.Result
	if t.score != nil {
		s := *t.score
		score = &s
	}
	return Snapshot{
		ID:          t.ID(),
		ProjectID:   t.projectID,
		CreatorID:   t.creatorID,
		AssigneeID:  t.assigneeID,
		Title:       t.title,
		Description: t.description,
		StoryPoints: t.storyPoints,
		Difficulty:  t.difficulty,
		Priority:    t.priority,
		BaseScore:   t.baseScore,
		DueDate:     t.dueDate,
		Tags:        t.Tags(),
		Status:      t.status,
		BlockedFrom: t.blockedFrom,
		BlockReason: t.blockReason,
		AssignedAt:  t.assignedAt,
		CompletedAt: t.completedAt,
		Score:       score,
		Version:     t.Version(),
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
	}
}

// Rehydrate recreates a task from persisted state without generating events.
func Rehydrate(s Snapshot) *Task {
	return &Task{
		BaseAggregateRoot: domain.RestoreAggregateRoot(s.ID, s.CreatedAt, s.UpdatedAt, s.Version),
		projectID:         s.ProjectID,
		creatorID:         s.CreatorID,
		assigneeID:        s.AssigneeID,
		title:             s.Title,
		description:       s.Description,
		storyPoints:       s.StoryPoints,
		difficulty:        s.Difficulty,
		priority:          s.Priority,
		baseScore:         s.BaseScore,
		dueDate:           s.DueDate,
		tags:              NormalizeTags(s.Tags),
		status:            s.Status,
		blockedFrom:       s.BlockedFrom,
		blockReason:       s.BlockReason,
		assignedAt:        s.AssignedAt,
		completedAt:       s.CompletedAt,
		score:             s.Score,
	}
}

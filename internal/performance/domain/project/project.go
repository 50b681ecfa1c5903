package project

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// Status represents where a project is in its life.
type Status string

const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
)

// ParseStatus validates a status name. Empty input means planning.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")); st {
	case "":
		return StatusPlanning, nil
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold:
		return st, nil
	default:
		return "", domain.InvalidSpecf("unknown project status %q", s)
	}
}

// Spec is the input for creating a project.
type Spec struct {
	ID          string
	Name        string
	Description string
	TeamID      string
	Status      string
	StartDate   calendar.Date
	EndDate     calendar.Date
}

// Project groups tasks and caches how many of them are done.
type Project struct {
	domain.BaseAggregateRoot
	name                string
	description         string
	teamID              string
	status              Status
	startDate           calendar.Date
	endDate             calendar.Date
	tasksCount          int
	completedTasksCount int
}

// New validates spec and creates a project with empty counters.
func New(spec Spec, now time.Time) (*Project, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, domain.InvalidSpecf("project name is required")
	}
	status, err := ParseStatus(spec.Status)
	if err != nil {
		return nil, err
	}
	if !spec.StartDate.IsZero() && !spec.EndDate.IsZero() && spec.EndDate.Before(spec.StartDate) {
		return nil, domain.InvalidSpecf("end date %s is before start date %s", spec.EndDate, spec.StartDate)
	}

	p := &Project{
		BaseAggregateRoot: domain.NewAggregateRoot(strings.TrimSpace(spec.ID), now),
		name:              name,
		description:       strings.TrimSpace(spec.Description),
		teamID:            strings.TrimSpace(spec.TeamID),
		status:            status,
		startDate:         spec.StartDate,
		endDate:           spec.EndDate,
	}
	p.AddDomainEvent(newProjectCreated(p, now))
	return p, nil
}

func (p *Project) Name() string             { return p.name }
func (p *Project) Description() string      { return p.description }
func (p *Project) TeamID() string           { return p.teamID }
func (p *Project) Status() Status           { return p.status }
func (p *Project) StartDate() calendar.Date { return p.startDate }
func (p *Project) EndDate() calendar.Date   { return p.endDate }
func (p *Project) TasksCount() int          { return p.tasksCount }
func (p *Project) CompletedTasksCount() int { return p.completedTasksCount }

// Progress returns the cached completion percentage.
func (p *Project) Progress() int {
	return scoring.ProjectProgress(p.completedTasksCount, p.tasksCount)
}

// Reconcile overwrites the cached counters with values recomputed from the
// task set. It reports whether the cache had drifted.
func (p *Project) Reconcile(total, completed int, now time.Time) (bool, error) {
	if total < 0 || completed < 0 || completed > total {
		return false, domain.InvalidSpecf("invalid task counts %d/%d", completed, total)
	}
	if total == p.tasksCount && completed == p.completedTasksCount {
		return false, nil
	}

	before := [2]int{p.tasksCount, p.completedTasksCount}
	p.tasksCount = total
	p.completedTasksCount = completed
	p.Touch(now)
	p.AddDomainEvent(newProjectReconciled(p, before, now))
	return true, nil
}

// ChangeStatus moves the project to another status.
func (p *Project) ChangeStatus(status Status, now time.Time) {
	if p.status == status {
		return
	}
	p.status = status
	p.Touch(now)
}

// Snapshot is the persisted form of a project.
type Snapshot struct {
	ID                  string
	Name                string
	Description         string
	TeamID              string
	Status              Status
	StartDate           calendar.Date
	EndDate             calendar.Date
	TasksCount          int
	CompletedTasksCount int
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Snapshot captures the project state for a repository.
func (p *Project) Snapshot() Snapshot {
	return Snapshot{
		ID:                  p.ID(),
		Name:                p.name,
		Description:         p.description,
		TeamID:              p.teamID,
		Status:              p.status,
		StartDate:           p.startDate,
		EndDate:             p.endDate,
		TasksCount:          p.tasksCount,
		CompletedTasksCount: p.completedTasksCount,
		Version:             p.Version(),
		CreatedAt:           p.CreatedAt(),
		UpdatedAt:           p.UpdatedAt(),
	}
}

// Rehydrate recreates a project from persisted state without generating events.
func Rehydrate(s Snapshot) *Project {
	return &Project{
		BaseAggregateRoot:   domain.RestoreAggregateRoot(s.ID, s.CreatedAt, s.UpdatedAt, s.Version),
		name:                s.Name,
		description:         s.Description,
		teamID:              s.TeamID,
		status:              s.Status,
		startDate:           s.StartDate,
		endDate:             s.EndDate,
		tasksCount:          s.TasksCount,
		completedTasksCount: s.CompletedTasksCount,
	}
}

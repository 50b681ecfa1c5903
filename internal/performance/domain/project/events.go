package project

import (
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

const (
	AggregateType = "Project"

	RoutingKeyCreated    = "perf.project.created"
	RoutingKeyReconciled = "perf.project.reconciled"
)

// ProjectCreated is emitted when a project is created.
type ProjectCreated struct {
	domain.BaseEvent
	Name   string `json:"name"`
	TeamID string `json:"team_id,omitempty"`
	Status string `json:"status"`
}

// ProjectReconciled is emitted when recomputed counters differ from the cache.
type ProjectReconciled struct {
	domain.BaseEvent
	PreviousTasks     int `json:"previous_tasks"`
	PreviousCompleted int `json:"previous_completed"`
	Tasks             int `json:"tasks"`
	Completed         int `json:"completed"`
}

func newProjectCreated(p *Project, at time.Time) *ProjectCreated {
	return &ProjectCreated{
		BaseEvent: domain.NewBaseEvent(p.ID(), AggregateType, RoutingKeyCreated, at),
		Name:      p.name,
		TeamID:    p.teamID,
		Status:    string(p.status),
	}
}

func newProjectReconciled(p *Project, before [2]int, at time.Time) *ProjectReconciled {
	return &ProjectReconciled{
		BaseEvent:         domain.NewBaseEvent(p.ID(), AggregateType, RoutingKeyReconciled, at),
		PreviousTasks:     before[0],
		PreviousCompleted: before[1],
		Tasks:             p.tasksCount,
		Completed:         p.completedTasksCount,
	}
}

package queries

import (
	"context"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// DashboardStats summarises the current month for one user or the whole organisation.
type DashboardStats struct {
	Month          string  `json:"month"`
	MonthlyScore   int     `json:"monthly_score"`
	TargetScore    int     `json:"target_score"`
	CompletedTasks int     `json:"completed_tasks"`
	PendingTasks   int     `json:"pending_tasks"`
	AverageScore   float64 `json:"average_score"`
	Productivity   int     `json:"productivity"`
}

// GetDashboardStatsQuery scopes the dashboard to a user. An empty UserID covers
// every developer, with their monthly targets summed.
type GetDashboardStatsQuery struct {
	UserID string
	Month  string
}

// GetDashboardStatsHandler handles the GetDashboardStatsQuery.
type GetDashboardStatsHandler struct {
	taskRepo task.Repository
	userRepo member.UserRepository
	clock    sharedApplication.Clock
}

// NewGetDashboardStatsHandler creates a new GetDashboardStatsHandler.
func NewGetDashboardStatsHandler(taskRepo task.Repository, userRepo member.UserRepository, clock sharedApplication.Clock) *GetDashboardStatsHandler {
	return &GetDashboardStatsHandler{
		taskRepo: taskRepo,
		userRepo: userRepo,
		clock:    clock,
	}
}

// Handle executes the GetDashboardStatsQuery.
func (h *GetDashboardStatsHandler) Handle(ctx context.Context, query GetDashboardStatsQuery) (*DashboardStats, error) {
	month, err := resolveMonth(query.Month, h.clock)
	if err != nil {
		return nil, err
	}

	target, err := h.target(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	tasks, err := h.taskRepo.List(ctx, task.Filter{AssigneeID: query.UserID})
	if err != nil {
		return nil, err
	}

	// query.UserID is scoring.AnyUser for the organisation-wide view.
	completions := completionsOf(tasks)
	stats := &DashboardStats{
		Month:          month.String(),
		TargetScore:    target,
		MonthlyScore:   scoring.MonthlyScore(completions, query.UserID, month),
		CompletedTasks: scoring.CountInMonth(completions, query.UserID, month),
	}
	for _, t := range tasks {
		if !t.IsCompleted() {
			stats.PendingTasks++
		}
	}
	stats.AverageScore = scoring.AverageScore(stats.MonthlyScore, stats.CompletedTasks)

	if target > 0 {
		stats.Productivity, err = scoring.Productivity(stats.MonthlyScore, target)
		if err != nil {
			return nil, err
		}
	} else if query.UserID != "" {
		return nil, domain.InvalidTargetf("user %s has no positive monthly target", query.UserID)
	}

	return stats, nil
}

func (h *GetDashboardStatsHandler) target(ctx context.Context, userID string) (int, error) {
	if userID != "" {
		user, err := h.userRepo.FindByID(ctx, userID)
		if err != nil {
			return 0, err
		}
		return user.MonthlyTarget(), nil
	}

	users, err := h.userRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, u := range users {
		if u.Role() == member.RoleDeveloper {
			total += u.MonthlyTarget()
		}
	}
	return total, nil
}

// completionsOf collects the scored outcome of every completed task.
func completionsOf(tasks []*task.Task) []scoring.Completion {
	completions := make([]scoring.Completion, 0, len(tasks))
	for _, t := range tasks {
		if c, ok := t.Completion(); ok {
			completions = append(completions, c)
		}
	}
	return completions
}

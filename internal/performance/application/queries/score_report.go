package queries

import (
	"context"
	"sort"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
)

// ScoreTask is one line of a score report.
type ScoreTask struct {
	TaskID        string `json:"task_id"`
	TaskTitle     string `json:"task_title"`
	BaseScore     int    `json:"base_score"`
	DelayPenalty  int    `json:"delay_penalty"`
	FinalScore    int    `json:"final_score"`
	CompletedDate string `json:"completed_date"`
	DueDate       string `json:"due_date"`
	DaysLate      int    `json:"days_late"`
}

// ScoreReport lists a user's scored tasks for one month.
type ScoreReport struct {
	UserID      string      `json:"user_id"`
	UserName    string      `json:"user_name"`
	Month       string      `json:"month"`
	Tasks       []ScoreTask `json:"tasks"`
	TotalScore  int         `json:"total_score"`
	TargetScore int         `json:"target_score"`
}

// GetScoreReportQuery selects the user and month. An empty month means the current one.
type GetScoreReportQuery struct {
	UserID string
	Month  string
}

// GetScoreReportHandler handles the GetScoreReportQuery.
type GetScoreReportHandler struct {
	taskRepo task.Repository
	userRepo member.UserRepository
	clock    sharedApplication.Clock
}

// NewGetScoreReportHandler creates a new GetScoreReportHandler.
func NewGetScoreReportHandler(taskRepo task.Repository, userRepo member.UserRepository, clock sharedApplication.Clock) *GetScoreReportHandler {
	return &GetScoreReportHandler{
		taskRepo: taskRepo,
		userRepo: userRepo,
		clock:    clock,
	}
}

// Handle executes the GetScoreReportQuery.
func (h *GetScoreReportHandler) Handle(ctx context.Context, query GetScoreReportQuery) (*ScoreReport, error) {
	month, err := resolveMonth(query.Month, h.clock)
	if err != nil {
		return nil, err
	}

	user, err := h.userRepo.FindByID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	completed := task.StatusCompleted
	tasks, err := h.taskRepo.List(ctx, task.Filter{
		AssigneeID:  user.ID(),
		Status:      &completed,
		CompletedIn: &month,
	})
	if err != nil {
		return nil, err
	}

	lines, completions := scoreLines(tasks, month)

	return &ScoreReport{
		UserID:      user.ID(),
		UserName:    user.Name(),
		Month:       month.String(),
		Tasks:       lines,
		TotalScore:  scoring.MonthlyScore(completions, user.ID(), month),
		TargetScore: user.MonthlyTarget(),
	}, nil
}

// scoreLines builds report lines ordered by completion time, then task id.
func scoreLines(tasks []*task.Task, month calendar.Month) ([]ScoreTask, []scoring.Completion) {
	type scored struct {
		t *task.Task
		c scoring.Completion
	}

	items := make([]scored, 0, len(tasks))
	for _, t := range tasks {
		c, ok := t.Completion()
		if !ok || !month.Contains(c.CompletedAt) {
			continue
		}
		items = append(items, scored{t: t, c: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].c.CompletedAt.Equal(items[j].c.CompletedAt) {
			return items[i].c.CompletedAt.Before(items[j].c.CompletedAt)
		}
		return items[i].c.TaskID < items[j].c.TaskID
	})

	lines := make([]ScoreTask, 0, len(items))
	completions := make([]scoring.Completion, 0, len(items))
	for _, it := range items {
		score := it.t.Score()
		lines = append(lines, ScoreTask{
			TaskID:        it.t.ID(),
			TaskTitle:     it.t.Title(),
			BaseScore:     score.BaseScore,
			DelayPenalty:  score.DelayPenalty,
			FinalScore:    score.FinalScore,
			CompletedDate: calendar.DateOf(it.c.CompletedAt).String(),
			DueDate:       it.t.DueDate().String(),
			DaysLate:      score.DaysLate,
		})
		completions = append(completions, it.c)
	}
	return lines, completions
}

func resolveMonth(s string, clock sharedApplication.Clock) (calendar.Month, error) {
	if s == "" {
		return calendar.MonthOf(clock.Now()), nil
	}
	month, err := calendar.ParseMonth(s)
	if err != nil {
		return calendar.Month{}, invalidMonth(s)
	}
	return month, nil
}

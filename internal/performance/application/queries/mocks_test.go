package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	"github.com/stretchr/testify/mock"
)

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) CountByProject(ctx context.Context, projectID string) (int, int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Int(1), args.Error(2)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Save(ctx context.Context, u *member.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*member.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.User), args.Error(1)
}

func (m *mockUserRepo) FindByTeam(ctx context.Context, teamID string) ([]*member.User, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]*member.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*member.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*member.User), args.Error(1)
}

type mockTeamRepo struct {
	mock.Mock
}

func (m *mockTeamRepo) Save(ctx context.Context, team *member.Team) error {
	return m.Called(ctx, team).Error(0)
}

func (m *mockTeamRepo) FindByID(ctx context.Context, id string) (*member.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Team), args.Error(1)
}

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Save(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *mockProjectRepo) List(ctx context.Context) ([]*project.Project, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*project.Project), args.Error(1)
}

func (m *mockProjectRepo) AdjustCounters(ctx context.Context, id string, tasksDelta, completedDelta int) error {
	return m.Called(ctx, id, tasksDelta, completedDelta).Error(0)
}

var november = time.Date(2024, 11, 25, 12, 0, 0, 0, time.UTC)

func clockAt(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func user(id, role string, target int) *member.User {
	r, err := member.ParseRole(role)
	if err != nil {
		panic(err)
	}
	return member.RehydrateUser(id, "User "+id, id+"@example.com", r, "team-1", target, november, november)
}

// scoredTask rehydrates a completed task with the given score stamped on completedAt.
func scoredTask(id, assignee string, completedAt time.Time, final int) *task.Task {
	return task.Rehydrate(task.Snapshot{
		ID:          id,
		ProjectID:   "proj-1",
		CreatorID:   "pm-1",
		AssigneeID:  assignee,
		Title:       "Task " + id,
		Description: "Description for " + id,
		StoryPoints: 5,
		Difficulty:  task.DifficultyMedium,
		Priority:    task.PriorityMedium,
		BaseScore:   10,
		DueDate:     calendar.MustParseDate("2024-11-10"),
		Status:      task.StatusCompleted,
		AssignedAt:  &completedAt,
		CompletedAt: &completedAt,
		Score:       &scoring.Result{BaseScore: 10, DaysLate: 10 - final, DelayPenalty: final - 10, FinalScore: final},
		Version:     4,
		CreatedAt:   completedAt,
		UpdatedAt:   completedAt,
	})
}

func openTask(id, assignee string, status task.Status, due string) *task.Task {
	s := task.Snapshot{
		ID:          id,
		ProjectID:   "proj-1",
		CreatorID:   "pm-1",
		AssigneeID:  assignee,
		Title:       "Task " + id,
		Description: "Description for " + id,
		StoryPoints: 3,
		Difficulty:  task.DifficultyEasy,
		Priority:    task.PriorityLow,
		BaseScore:   6,
		DueDate:     calendar.MustParseDate(due),
		Status:      status,
		CreatedAt:   november,
		UpdatedAt:   november,
	}
	if assignee != "" {
		s.AssignedAt = &november
	}
	return task.Rehydrate(s)
}

package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
	"github.com/stretchr/testify/mock"
)

// mockTaskRepo is a mock implementation of task.Repository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
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

// mockProjectRepo is a mock implementation of project.Repository.
type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) Save(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Project), args.Error(1)
}

func (m *mockProjectRepo) AdjustCounters(ctx context.Context, id string, tasksDelta, completedDelta int) error {
	args := m.Called(ctx, id, tasksDelta, completedDelta)
	return args.Error(0)
}

// mockUserRepo is a mock implementation of member.UserRepository.
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Save(ctx context.Context, u *member.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*member.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*member.User), args.Error(1)
}

// mockTeamRepo is a mock implementation of member.TeamRepository.
type mockTeamRepo struct {
	mock.Mock
}

func (m *mockTeamRepo) Save(ctx context.Context, team *member.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *mockTeamRepo) FindByID(ctx context.Context, id string) (*member.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*member.Team), args.Error(1)
}

// mockOutboxRepo is a mock outbox.Writer.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

// mockUnitOfWork is a mock implementation of UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var (
	createdAt = time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	approveAt = time.Date(2024, 11, 13, 16, 0, 0, 0, time.UTC)
)

func fixedClock(at time.Time) sharedApplication.Clock {
	return func() time.Time { return at }
}

// fixture wires every mock into a TaskDependencies with a real in-process locker.
type fixture struct {
	tasks    *mockTaskRepo
	projects *mockProjectRepo
	users    *mockUserRepo
	outbox   *mockOutboxRepo
	uow      *mockUnitOfWork
	metrics  *observability.InMemoryMetrics
	deps     TaskDependencies
	ctx      context.Context
	txCtx    context.Context
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		tasks:    new(mockTaskRepo),
		projects: new(mockProjectRepo),
		users:    new(mockUserRepo),
		outbox:   new(mockOutboxRepo),
		uow:      new(mockUnitOfWork),
		metrics:  observability.NewInMemoryMetrics(),
		ctx:      context.Background(),
	}
	f.txCtx = context.WithValue(f.ctx, "tx", "transaction")
	f.deps = TaskDependencies{
		Tasks:      f.tasks,
		Projects:   f.projects,
		Users:      f.users,
		Outbox:     f.outbox,
		UnitOfWork: f.uow,
		Locker:     lock.NewLocalLocker(time.Second),
		Policy:     scoring.DefaultPolicy(),
		Clock:      fixedClock(now),
		Metrics:    f.metrics,
	}
	return f
}

// expectCommit sets up a unit of work that begins and commits.
func (f *fixture) expectCommit() {
	f.uow.On("Begin", f.ctx).Return(f.txCtx, nil)
	f.uow.On("Commit", f.txCtx).Return(nil)
}

// expectRollback sets up a unit of work that begins and rolls back.
func (f *fixture) expectRollback() {
	f.uow.On("Begin", f.ctx).Return(f.txCtx, nil)
	f.uow.On("Rollback", f.txCtx).Return(nil)
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.tasks.AssertExpectations(t)
	f.projects.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func newUser(id, role string) *member.User {
	r, err := member.ParseRole(role)
	if err != nil {
		panic(err)
	}
	return member.RehydrateUser(id, id, id+"@example.com", r, "team-1", 50, createdAt, createdAt)
}

// newTaskIn builds task-1 (base score 10, due 2024-11-10) and walks it to status.
func newTaskIn(status task.Status, assignee string) *task.Task {
	t, err := task.New(task.Spec{
		ID:          "task-1",
		ProjectID:   "proj-1",
		CreatorID:   "pm-1",
		Title:       "Checkout flow",
		Description: "Implement the checkout flow end to end",
		StoryPoints: 5,
		Difficulty:  "Hard",
		DueDate:     calendar.MustParseDate("2024-11-10"),
	}, createdAt)
	if err != nil {
		panic(err)
	}

	steps := []func() error{
		func() error { return t.Claim(assignee, createdAt) },
		func() error { return t.Start(assignee, createdAt) },
		func() error { return t.Submit(assignee, createdAt) },
		func() error { return t.Approve("pm-1", scoring.DefaultPolicy(), scoring.Override{}, createdAt) },
	}
	depth := map[task.Status]int{
		task.StatusAvailable:  0,
		task.StatusTodo:       1,
		task.StatusInProgress: 2,
		task.StatusReview:     3,
		task.StatusCompleted:  4,
		task.StatusBlocked:    2,
	}
	for _, step := range steps[:depth[status]] {
		if err := step(); err != nil {
			panic(err)
		}
	}
	if status == task.StatusBlocked {
		if err := t.Block("pm-1", "waiting", createdAt); err != nil {
			panic(err)
		}
	}
	t.ClearDomainEvents()
	return t
}

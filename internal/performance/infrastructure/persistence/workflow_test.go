package persistence_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func taskDeps(s *store, c *clock, metrics observability.Metrics) commands.TaskDependencies {
	return commands.TaskDependencies{
		Tasks:      s.tasks,
		Projects:   s.projects,
		Users:      s.users,
		Outbox:     outbox.NewSQLRepository(s.conn),
		UnitOfWork: database.NewUnitOfWork(s.conn),
		Locker:     lock.NewLocalLocker(5 * time.Second),
		Policy:     scoring.DefaultPolicy(),
		Clock:      c.Now,
		Metrics:    metrics,
	}
}

// raceClaims has each handler claim taskID for its own user at the same
// moment and returns the winning user.
func raceClaims(t *testing.T, taskID string, handlers []*commands.ClaimTaskHandler, claimants []string) string {
	t.Helper()
	ctx := context.Background()

	errs := make([]error, len(claimants))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, userID := range claimants {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			<-start
			_, errs[i] = handlers[i].Handle(ctx, commands.ClaimTaskCommand{TaskID: taskID, UserID: userID})
		}(i, userID)
	}
	close(start)
	wg.Wait()

	winner := ""
	for i, err := range errs {
		if err == nil {
			require.Empty(t, winner, "two claims succeeded")
			winner = claimants[i]
			continue
		}
		assert.ErrorIs(t, err, domain.ErrTaskUnavailable)
	}
	require.NotEmpty(t, winner)
	return winner
}

func TestClaimRace_ExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.seed(t)
	s.newTask(t, "task-1", "2024-11-10")

	metrics := observability.NewInMemoryMetrics()
	handler := commands.NewClaimTaskHandler(taskDeps(s, &clock{now: day}, metrics))

	winner := raceClaims(t, "task-1", []*commands.ClaimTaskHandler{handler, handler}, []string{"dev-A", "dev-B"})

	stored, err := s.tasks.FindByID(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, winner, stored.AssigneeID())
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricTasksClaimed))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricClaimConflicts))

	pending, err := outbox.NewSQLRepository(s.conn).GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "perf.task.claimed", pending[0].RoutingKey)
}

// Each handler gets its own locker, as two processes without a shared lock
// would. The version check on save is all that separates them.
func TestClaimRace_SeparateLockers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.seed(t)

	c := &clock{now: day}
	first := commands.NewClaimTaskHandler(taskDeps(s, c, observability.NoopMetrics{}))
	second := commands.NewClaimTaskHandler(taskDeps(s, c, observability.NoopMetrics{}))
	handlers := []*commands.ClaimTaskHandler{first, second}

	for round := 0; round < 10; round++ {
		taskID := fmt.Sprintf("task-race-%d", round)
		s.newTask(t, taskID, "2024-11-10")

		winner := raceClaims(t, taskID, handlers, []string{"dev-A", "dev-B"})

		stored, err := s.tasks.FindByID(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, winner, stored.AssigneeID(), "round %d", round)
		assert.Equal(t, 2, stored.Version(), "round %d: one save after creation", round)
	}
}

func TestProjectProgress_FollowsTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.seed(t)

	c := &clock{now: day}
	deps := taskDeps(s, c, nil)
	create := commands.NewCreateTaskHandler(deps)

	for _, id := range []string{"task-1", "task-2"} {
		_, err := create.Handle(ctx, commands.CreateTaskCommand{
			ActorID:     "pm-1",
			TaskID:      id,
			ProjectID:   "proj-1",
			Title:       "Payment gateway " + id,
			Description: "Integrate the payment gateway",
			StoryPoints: 5,
			Difficulty:  "Medium",
			DueDate:     "2024-11-10",
		})
		require.NoError(t, err)
	}

	_, err := commands.NewClaimTaskHandler(deps).Handle(ctx, commands.ClaimTaskCommand{TaskID: "task-1", UserID: "dev-A"})
	require.NoError(t, err)
	_, err = commands.NewStartTaskHandler(deps).Handle(ctx, commands.StartTaskCommand{TaskID: "task-1", CallerID: "dev-A"})
	require.NoError(t, err)
	_, err = commands.NewSubmitTaskHandler(deps).Handle(ctx, commands.SubmitTaskCommand{TaskID: "task-1", CallerID: "dev-A"})
	require.NoError(t, err)

	c.Set(time.Date(2024, 11, 13, 16, 0, 0, 0, time.UTC))
	approved, err := commands.NewApproveTaskHandler(deps).Handle(ctx, commands.ApproveTaskCommand{TaskID: "task-1", ActorID: "pm-1"})
	require.NoError(t, err)
	require.NotNil(t, approved.FinalScore)
	assert.Equal(t, 7, *approved.FinalScore)

	progress, err := queries.NewGetProjectProgressHandler(s.projects, s.tasks).
		Handle(ctx, queries.GetProjectProgressQuery{ProjectID: "proj-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, progress.TasksCount)
	assert.Equal(t, 1, progress.CompletedTasksCount)
	assert.Equal(t, 50, progress.Progress)
	assert.True(t, progress.InSync)

	report, err := queries.NewGetScoreReportHandler(s.tasks, s.users, c.Now).
		Handle(ctx, queries.GetScoreReportQuery{UserID: "dev-A"})
	require.NoError(t, err)
	assert.Equal(t, 7, report.TotalScore)
	require.Len(t, report.Tasks, 1)
	assert.Equal(t, 3, report.Tasks[0].DaysLate)
}

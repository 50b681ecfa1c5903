package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/subscribers"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	"github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/fixtures"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/perfboard/pkg/config"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewDay = time.Date(2024, 11, 13, 12, 0, 0, 0, time.UTC)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:                 "test",
		LocalMode:              true,
		DatabaseDriver:         "sqlite",
		SQLitePath:             filepath.Join(t.TempDir(), "perfboard.db"),
		LockWait:               time.Second,
		OutboxBatchSize:        100,
		OutboxMaxRetries:       3,
		OutboxProcessorEnabled: true,
		ScorePenaltyPerDay:     1,
		ScoreMinFloorPercent:   20,
		DefaultMonthlyTarget:   50,
	}
}

func setupLocalModeContainer(t *testing.T) (*Container, context.Context) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewContainer(ctx, localConfig(t), logger, WithClock(func() time.Time { return reviewDay }))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	f, err := fixtures.ReadFile(filepath.Join("..", "..", "fixtures", "demo.yaml"))
	require.NoError(t, err)
	_, err = c.Seeder.Seed(ctx, f, "")
	require.NoError(t, err)

	return c, ctx
}

func TestLocalModeContainer(t *testing.T) {
	c, _ := setupLocalModeContainer(t)

	assert.Equal(t, database.DriverSQLite, c.DBConn.Driver())
	assert.Nil(t, c.RedisClient)
	assert.NotNil(t, c.Locker)
	assert.NotNil(t, c.Tasks)
	assert.NotNil(t, c.Outbox)
	assert.NotNil(t, c.ClaimTaskHandler)
	assert.NotNil(t, c.GetDashboardStatsHandler)
	assert.NotNil(t, c.ReportRenderer)
}

func TestDemoFixtures_SeedOnSystemClock(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewContainer(ctx, localConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	f, err := fixtures.ReadFile(filepath.Join("..", "..", "fixtures", "demo.yaml"))
	require.NoError(t, err)
	today := time.Now().UTC()
	sum, err := c.Seeder.Seed(ctx, f, "")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Tasks)

	cart, err := c.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{TaskID: "task-cart"})
	require.NoError(t, err)
	assert.Contains(t, []string{
		today.AddDate(0, 0, 2).Format("2006-01-02"),
		today.AddDate(0, 0, 3).Format("2006-01-02"),
	}, cart.DueDate, "due two days after seeding")
}

func TestNewContainer_RejectsBadScoringPolicy(t *testing.T) {
	cfg := localConfig(t)
	cfg.ScoreMinFloorPercent = 150

	_, err := NewContainer(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestLocalModeTaskWorkflow(t *testing.T) {
	c, ctx := setupLocalModeContainer(t)

	_, err := c.ClaimTaskHandler.Handle(ctx, commands.ClaimTaskCommand{TaskID: "task-payments", UserID: "dev-ben"})
	require.NoError(t, err)

	_, err = c.ClaimTaskHandler.Handle(ctx, commands.ClaimTaskCommand{TaskID: "task-payments", UserID: "dev-ana"})
	assert.Equal(t, domain.ErrTaskUnavailable, domain.KindOf(err))

	_, err = c.StartTaskHandler.Handle(ctx, commands.StartTaskCommand{TaskID: "task-payments", CallerID: "dev-ben"})
	require.NoError(t, err)
	_, err = c.SubmitTaskHandler.Handle(ctx, commands.SubmitTaskCommand{TaskID: "task-payments", CallerID: "dev-ben"})
	require.NoError(t, err)
	approved, err := c.ApproveTaskHandler.Handle(ctx, commands.ApproveTaskCommand{TaskID: "task-payments", ActorID: "pm-priya"})
	require.NoError(t, err)

	assert.Equal(t, "completed", approved.Status)
	require.NotNil(t, approved.FinalScore)
	assert.Equal(t, approved.BaseScore, *approved.FinalScore, "approved a week early")

	report, err := c.GetScoreReportHandler.Handle(ctx, queries.GetScoreReportQuery{UserID: "dev-ben", Month: "2024-11"})
	require.NoError(t, err)
	require.Len(t, report.Tasks, 1)
	assert.Equal(t, approved.BaseScore, report.TotalScore)
	assert.Equal(t, 40, report.TargetScore)

	progress, err := c.GetProjectProgressHandler.Handle(ctx, queries.GetProjectProgressQuery{ProjectID: "proj-shop"})
	require.NoError(t, err)
	assert.Equal(t, 3, progress.TasksCount)
	assert.Equal(t, 1, progress.CompletedTasksCount)
	assert.Equal(t, 33, progress.Progress)
	assert.True(t, progress.InSync)

	open, err := c.UpcomingDeadlinesHandler.Handle(ctx, queries.UpcomingDeadlinesQuery{AssigneeID: "dev-ana", Limit: 5})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "task-cart", open[0].ID)
	assert.Equal(t, task.StatusTodo.String(), open[0].Status)
}

func TestLocalModeWorker(t *testing.T) {
	c, ctx := setupLocalModeContainer(t)

	_, err := c.ClaimTaskHandler.Handle(ctx, commands.ClaimTaskCommand{TaskID: "task-banner", UserID: "dev-ana"})
	require.NoError(t, err)

	w, err := NewWorker(c)
	require.NoError(t, err)
	require.NotNil(t, w.Activity())
	assert.Equal(t, []string{"database"}, w.Health.Names())

	require.NoError(t, w.Processor.ProcessOnce(ctx))
	stats := w.Processor.Stats()
	assert.Zero(t, stats.FailedCount)
	assert.NotZero(t, stats.PublishedCount)
	assert.NotZero(t, c.Metrics.GetCounter(observability.MetricEventsPublished,
		observability.T("routing_key", task.RoutingKeyClaimed)))

	recent := w.Activity().Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, task.RoutingKeyClaimed, recent[0].RoutingKey)
	assert.Equal(t, "task-banner", recent[0].AggregateID)
	assert.Equal(t, "dev-ana", recent[0].AssigneeID)

	srv := httptest.NewServer(w.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/activity?limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	var feed []subscribers.Activity
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	assert.Len(t, feed, 2)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, stats.PublishedCount, health["published"])

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var points []observability.Point
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
	assert.NotEmpty(t, points)
}

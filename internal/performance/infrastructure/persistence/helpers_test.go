package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	"github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/persistence"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/migrations"
)

var day = time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)

type store struct {
	conn     database.Connection
	tasks    *persistence.TaskRepository
	projects *persistence.ProjectRepository
	users    *persistence.UserRepository
	teams    *persistence.TeamRepository
}

func newStore(t *testing.T) *store {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	return &store{
		conn:     conn,
		tasks:    persistence.NewTaskRepository(conn),
		projects: persistence.NewProjectRepository(conn),
		users:    persistence.NewUserRepository(conn),
		teams:    persistence.NewTeamRepository(conn),
	}
}

// seed stores a team, a project manager, two developers and one project.
func (s *store) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	team, err := member.NewTeam("team-1", "Platform", "pm-1", day)
	require.NoError(t, err)
	require.NoError(t, s.teams.Save(ctx, team))

	for _, spec := range []member.UserSpec{
		{ID: "pm-1", Name: "Priya", Email: "priya@example.com", Role: "pm", TeamID: "team-1"},
		{ID: "dev-A", Name: "Ana", Email: "ana@example.com", Role: "developer", TeamID: "team-1"},
		{ID: "dev-B", Name: "Ben", Email: "ben@example.com", Role: "developer", TeamID: "team-1", MonthlyTarget: 40},
	} {
		u, err := member.NewUser(spec, member.DefaultMonthlyTarget, day)
		require.NoError(t, err)
		require.NoError(t, s.users.Save(ctx, u))
	}

	p, err := project.New(project.Spec{ID: "proj-1", Name: "E-commerce", TeamID: "team-1"}, day)
	require.NoError(t, err)
	require.NoError(t, s.projects.Save(ctx, p))
}

func (s *store) newTask(t *testing.T, id, due string) *task.Task {
	t.Helper()
	created, err := task.New(task.Spec{
		ID:          id,
		ProjectID:   "proj-1",
		CreatorID:   "pm-1",
		Title:       "Checkout flow " + id,
		Description: "Build the checkout flow for " + id,
		StoryPoints: 5,
		Difficulty:  "Medium",
		DueDate:     calendar.MustParseDate(due),
		Tags:        []string{"backend", "payments"},
	}, day)
	require.NoError(t, err)
	require.NoError(t, s.tasks.Save(context.Background(), created))
	return created
}

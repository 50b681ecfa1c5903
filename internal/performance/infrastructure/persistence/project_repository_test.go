package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

func TestProjectRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.seed(t)

	p, err := project.New(project.Spec{
		ID:          "proj-2",
		Name:        "Mobile app",
		Description: "Companion app",
		TeamID:      "team-1",
		Status:      "in-progress",
		StartDate:   calendar.MustParseDate("2024-11-01"),
		EndDate:     calendar.MustParseDate("2025-01-31"),
	}, day)
	require.NoError(t, err)
	require.NoError(t, s.projects.Save(ctx, p))

	loaded, err := s.projects.FindByID(ctx, "proj-2")
	require.NoError(t, err)
	assert.Equal(t, "Mobile app", loaded.Name())
	assert.Equal(t, project.StatusInProgress, loaded.Status())
	assert.Equal(t, "2025-01-31", loaded.EndDate().String())
	assert.Equal(t, 1, loaded.Version())

	all, err := s.projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "E-commerce", all[0].Name())
}

func TestProjectRepository_AdjustCounters(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.seed(t)

	stale, err := s.projects.FindByID(ctx, "proj-1")
	require.NoError(t, err)

	require.NoError(t, s.projects.AdjustCounters(ctx, "proj-1", 3, 0))
	require.NoError(t, s.projects.AdjustCounters(ctx, "proj-1", 0, 1))

	loaded, err := s.projects.FindByID(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.TasksCount())
	assert.Equal(t, 1, loaded.CompletedTasksCount())
	assert.Equal(t, 33, loaded.Progress())

	stale.ChangeStatus(project.StatusOnHold, day)
	assert.ErrorIs(t, s.projects.Save(ctx, stale), domain.ErrConcurrentModification)

	assert.ErrorIs(t, s.projects.AdjustCounters(ctx, "missing", 1, 0), domain.ErrNotFound)
}

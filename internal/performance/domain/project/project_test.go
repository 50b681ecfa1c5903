package project_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	p, err := project.New(project.Spec{
		ID:        "proj-1",
		Name:      "  E-commerce Platform ",
		TeamID:    "team-1",
		Status:    "in-progress",
		StartDate: calendar.MustParseDate("2024-10-01"),
		EndDate:   calendar.MustParseDate("2024-12-31"),
	}, now)

	require.NoError(t, err)
	assert.Equal(t, "proj-1", p.ID())
	assert.Equal(t, "E-commerce Platform", p.Name())
	assert.Equal(t, project.StatusInProgress, p.Status())
	assert.Equal(t, 0, p.Progress())

	require.Len(t, p.DomainEvents(), 1)
	evt, ok := p.DomainEvents()[0].(*project.ProjectCreated)
	require.True(t, ok)
	assert.Equal(t, "in_progress", evt.Status)
}

func TestNew_Invalid(t *testing.T) {
	_, err := project.New(project.Spec{Name: " "}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)

	_, err = project.New(project.Spec{Name: "Mobile", Status: "abandoned"}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)

	_, err = project.New(project.Spec{
		Name:      "Mobile",
		StartDate: calendar.MustParseDate("2024-12-01"),
		EndDate:   calendar.MustParseDate("2024-11-01"),
	}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)
}

func TestProject_Reconcile(t *testing.T) {
	p, err := project.New(project.Spec{Name: "Mobile App"}, now)
	require.NoError(t, err)
	p.ClearDomainEvents()

	changed, err := p.Reconcile(0, 0, now)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, p.DomainEvents())

	changed, err = p.Reconcile(1, 0, now)
	require.NoError(t, err)
	assert.True(t, changed)
	p.ClearDomainEvents()

	changed, err = p.Reconcile(4, 2, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 50, p.Progress())
	assert.Equal(t, 4, p.TasksCount())
	assert.Equal(t, 2, p.CompletedTasksCount())
	require.Len(t, p.DomainEvents(), 1)
	evt := p.DomainEvents()[0].(*project.ProjectReconciled)
	assert.Equal(t, 1, evt.PreviousTasks)
	assert.Equal(t, 4, evt.Tasks)

	_, err = p.Reconcile(1, 2, now)
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)
}

func TestSnapshotRoundTrip(t *testing.T) {
	p, err := project.New(project.Spec{ID: "proj-2", Name: "Analytics", StartDate: calendar.MustParseDate("2024-01-01")}, now)
	require.NoError(t, err)
	_, err = p.Reconcile(3, 1, now)
	require.NoError(t, err)
	p.ChangeStatus(project.StatusOnHold, now)

	restored := project.Rehydrate(p.Snapshot())

	assert.Equal(t, p.Snapshot(), restored.Snapshot())
	assert.Empty(t, restored.DomainEvents())
}

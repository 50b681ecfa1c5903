package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
)

const projectColumns = `id, name, description, team_id, status, start_date, end_date,
	tasks_count, completed_tasks_count, version, created_at, updated_at`

// ProjectRepository implements project.Repository.
type ProjectRepository struct {
	conn database.Connection
	now  func() time.Time
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(conn database.Connection) *ProjectRepository {
	return &ProjectRepository{
		conn: conn,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Save inserts a new project or updates a loaded one under its version.
func (r *ProjectRepository) Save(ctx context.Context, p *project.Project) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	s := p.Snapshot()

	if s.Version == 0 {
		_, err := exec.Exec(ctx, `
			INSERT INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			s.ID, s.Name, s.Description, nullString(s.TeamID), string(s.Status),
			nullDate(s.StartDate), nullDate(s.EndDate),
			s.TasksCount, s.CompletedTasksCount,
			formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
		)
		if errors.Is(err, database.ErrDuplicateKey) {
			return domain.InvalidSpecf("project %s already exists", s.ID)
		}
		if err != nil {
			return fmt.Errorf("insert project %s: %w", s.ID, err)
		}
		p.IncrementVersion()
		return nil
	}

	err := database.ExecOne(ctx, exec, domain.ErrConcurrentModification, `
		UPDATE projects SET
			name = ?, description = ?, team_id = ?, status = ?, start_date = ?, end_date = ?,
			tasks_count = ?, completed_tasks_count = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		s.Name, s.Description, nullString(s.TeamID), string(s.Status),
		nullDate(s.StartDate), nullDate(s.EndDate),
		s.TasksCount, s.CompletedTasksCount, formatTime(s.UpdatedAt),
		s.ID, s.Version,
	)
	if errors.Is(err, domain.ErrConcurrentModification) {
		return err
	}
	if err != nil {
		return fmt.Errorf("update project %s: %w", s.ID, err)
	}
	p.IncrementVersion()
	return nil
}

// FindByID loads one project.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*project.Project, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if database.IsNoRows(err) {
		return nil, domain.NotFoundf("project %s", id)
	}
	return p, err
}

// List returns every project ordered by name.
func (r *ProjectRepository) List(ctx context.Context) ([]*project.Project, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY name, id`)
	return database.Collect(rows, err, scanProject)
}

// AdjustCounters adds the deltas in a single statement.
func (r *ProjectRepository) AdjustCounters(ctx context.Context, id string, tasksDelta, completedDelta int) error {
	missing := domain.NotFoundf("project %s", id)
	err := database.ExecOne(ctx, database.ExecutorFromContext(ctx, r.conn), missing, `
		UPDATE projects SET
			tasks_count = tasks_count + ?,
			completed_tasks_count = completed_tasks_count + ?,
			updated_at = ?,
			version = version + 1
		WHERE id = ?`,
		tasksDelta, completedDelta, formatTime(r.now()), id,
	)
	if err != nil && err != missing {
		return fmt.Errorf("adjust counters of project %s: %w", id, err)
	}
	return err
}

func scanProject(row database.Row) (*project.Project, error) {
	var (
		s                          project.Snapshot
		teamID, startDate, endDate sql.NullString
		status                     string
		createdAt, updatedAt       string
	)
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &teamID, &status, &startDate, &endDate,
		&s.TasksCount, &s.CompletedTasksCount, &s.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.TeamID = teamID.String
	if s.Status, err = project.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("project %s: %w", s.ID, err)
	}
	if s.StartDate, err = parseOptionalDate(startDate); err != nil {
		return nil, fmt.Errorf("project %s: start date: %w", s.ID, err)
	}
	if s.EndDate, err = parseOptionalDate(endDate); err != nil {
		return nil, fmt.Errorf("project %s: end date: %w", s.ID, err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("project %s: created_at: %w", s.ID, err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("project %s: updated_at: %w", s.ID, err)
	}
	return project.Rehydrate(s), nil
}

var _ project.Repository = (*ProjectRepository)(nil)

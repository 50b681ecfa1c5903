package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
)

const taskColumns = `id, project_id, creator_id, assignee_id, title, description,
	story_points, difficulty, priority, base_score, due_date, tags, status,
	blocked_from, block_reason, assigned_at, completed_at, final_score,
	delay_penalty, days_late, score_overridden, version, created_at, updated_at`

// TaskRepository implements task.Repository.
type TaskRepository struct {
	conn database.Connection
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(conn database.Connection) *TaskRepository {
	return &TaskRepository{conn: conn}
}

// Save inserts a new task or updates a loaded one under its version.
func (r *TaskRepository) Save(ctx context.Context, t *task.Task) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	s := t.Snapshot()

	tags, err := json.Marshal(s.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	var blockedFrom sql.NullString
	if s.Status == task.StatusBlocked {
		blockedFrom = nullString(s.BlockedFrom.String())
	}
	var finalScore, delayPenalty, daysLate sql.NullInt64
	overridden := 0
	if s.Score != nil {
		finalScore = sql.NullInt64{Int64: int64(s.Score.FinalScore), Valid: true}
		delayPenalty = sql.NullInt64{Int64: int64(s.Score.DelayPenalty), Valid: true}
		daysLate = sql.NullInt64{Int64: int64(s.Score.DaysLate), Valid: true}
		if s.Score.Overridden {
			overridden = 1
		}
	}

	if s.Version == 0 {
		_, err = exec.Exec(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			s.ID, s.ProjectID, s.CreatorID, nullString(s.AssigneeID), s.Title, s.Description,
			int(s.StoryPoints), string(s.Difficulty), string(s.Priority), s.BaseScore,
			s.DueDate.String(), string(tags), s.Status.String(),
			blockedFrom, nullString(s.BlockReason),
			formatOptionalTime(s.AssignedAt), formatOptionalTime(s.CompletedAt),
			finalScore, delayPenalty, daysLate, overridden,
			formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
		)
		if errors.Is(err, database.ErrDuplicateKey) {
			return domain.InvalidSpecf("task %s already exists", s.ID)
		}
		if err != nil {
			return fmt.Errorf("insert task %s: %w", s.ID, err)
		}
		t.IncrementVersion()
		return nil
	}

	err = database.ExecOne(ctx, exec, domain.ErrConcurrentModification, `
		UPDATE tasks SET
			assignee_id = ?, title = ?, description = ?, priority = ?, due_date = ?,
			tags = ?, status = ?, blocked_from = ?, block_reason = ?,
			assigned_at = ?, completed_at = ?, final_score = ?, delay_penalty = ?,
			days_late = ?, score_overridden = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		nullString(s.AssigneeID), s.Title, s.Description, string(s.Priority), s.DueDate.String(),
		string(tags), s.Status.String(), blockedFrom, nullString(s.BlockReason),
		formatOptionalTime(s.AssignedAt), formatOptionalTime(s.CompletedAt), finalScore, delayPenalty,
		daysLate, overridden, formatTime(s.UpdatedAt),
		s.ID, s.Version,
	)
	if errors.Is(err, domain.ErrConcurrentModification) {
		return err
	}
	if err != nil {
		return fmt.Errorf("update task %s: %w", s.ID, err)
	}
	t.IncrementVersion()
	return nil
}

// FindByID loads one task.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*task.Task, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if database.IsNoRows(err) {
		return nil, domain.NotFoundf("task %s", id)
	}
	return t, err
}

// List returns the tasks matching filter, by due date when OrderByDue is set
// and by creation time otherwise.
func (r *TaskRepository) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.AssigneeID != "" {
		where = append(where, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.OpenOnly {
		where = append(where, "status <> ?")
		args = append(args, task.StatusCompleted.String())
	}
	if filter.CompletedIn != nil {
		where = append(where, "completed_at >= ? AND completed_at < ?")
		args = append(args, formatTime(filter.CompletedIn.Start()), formatTime(filter.CompletedIn.End()))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.OrderByDue {
		query += " ORDER BY due_date, id"
	} else {
		query += " ORDER BY created_at, id"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	return database.Collect(rows, err, scanTask)
}

// CountByProject recounts a project's tasks from the task table.
func (r *TaskRepository) CountByProject(ctx context.Context, projectID string) (int, int, error) {
	var total, completed int
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM tasks
		WHERE project_id = ?`,
		task.StatusCompleted.String(), projectID,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("count tasks of project %s: %w", projectID, err)
	}
	return total, completed, nil
}

func scanTask(row database.Row) (*task.Task, error) {
	var (
		s                                    task.Snapshot
		assigneeID, blockedFrom, blockReason sql.NullString
		assignedAt, completedAt              sql.NullString
		finalScore, delayPenalty, daysLate   sql.NullInt64
		storyPoints, overridden              int
		difficulty, priority, status         string
		dueDate, tags, createdAt, updatedAt  string
	)
	err := row.Scan(
		&s.ID, &s.ProjectID, &s.CreatorID, &assigneeID, &s.Title, &s.Description,
		&storyPoints, &difficulty, &priority, &s.BaseScore, &dueDate, &tags, &status,
		&blockedFrom, &blockReason, &assignedAt, &completedAt, &finalScore,
		&delayPenalty, &daysLate, &overridden, &s.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.AssigneeID = assigneeID.String
	s.BlockReason = blockReason.String
	s.StoryPoints = task.StoryPoints(storyPoints)
	s.Difficulty = task.Difficulty(difficulty)
	s.Priority = task.Priority(priority)

	if s.Status, err = task.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("task %s: %w", s.ID, err)
	}
	if blockedFrom.Valid {
		if s.BlockedFrom, err = task.ParseStatus(blockedFrom.String); err != nil {
			return nil, fmt.Errorf("task %s: %w", s.ID, err)
		}
	}
	if s.DueDate, err = calendar.ParseDate(dueDate); err != nil {
		return nil, fmt.Errorf("task %s: due date: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &s.Tags); err != nil {
		return nil, fmt.Errorf("task %s: tags: %w", s.ID, err)
	}
	if s.AssignedAt, err = parseOptionalTime(assignedAt); err != nil {
		return nil, fmt.Errorf("task %s: assigned_at: %w", s.ID, err)
	}
	if s.CompletedAt, err = parseOptionalTime(completedAt); err != nil {
		return nil, fmt.Errorf("task %s: completed_at: %w", s.ID, err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("task %s: created_at: %w", s.ID, err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("task %s: updated_at: %w", s.ID, err)
	}
	if finalScore.Valid {
		s.Score = &scoring.Result{
			BaseScore:    s.BaseScore,
			DaysLate:     int(daysLate.Int64),
			DelayPenalty: int(delayPenalty.Int64),
			FinalScore:   int(finalScore.Int64),
			Overridden:   overridden == 1,
		}
	}

	return task.Rehydrate(s), nil
}

var _ task.Repository = (*TaskRepository)(nil)

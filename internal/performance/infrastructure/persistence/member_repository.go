package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
)

const userColumns = `id, name, email, role, team_id, monthly_target, created_at, updated_at`

// UserRepository implements member.UserRepository.
type UserRepository struct {
	conn database.Connection
}

// NewUserRepository creates a new user repository.
func NewUserRepository(conn database.Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// Save upserts a user. Emails are unique across the organisation.
func (r *UserRepository) Save(ctx context.Context, u *member.User) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			team_id = excluded.team_id,
			monthly_target = excluded.monthly_target,
			updated_at = excluded.updated_at`,
		u.ID(), u.Name(), u.Email(), string(u.Role()), nullString(u.TeamID()),
		u.MonthlyTarget(), formatTime(u.CreatedAt()), formatTime(u.UpdatedAt()),
	)
	if errors.Is(err, database.ErrDuplicateKey) {
		return domain.InvalidSpecf("email %s is already registered", u.Email())
	}
	if err != nil {
		return fmt.Errorf("save user %s: %w", u.ID(), err)
	}
	return nil
}

// FindByID loads one user.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*member.User, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if database.IsNoRows(err) {
		return nil, domain.NotFoundf("user %s", id)
	}
	return u, err
}

// FindByTeam returns the members of a team ordered by name.
func (r *UserRepository) FindByTeam(ctx context.Context, teamID string) ([]*member.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE team_id = ? ORDER BY name, id`, teamID)
}

// List returns every user ordered by name.
func (r *UserRepository) List(ctx context.Context) ([]*member.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
}

func (r *UserRepository) query(ctx context.Context, query string, args ...any) ([]*member.User, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	return database.Collect(rows, err, scanUser)
}

func scanUser(row database.Row) (*member.User, error) {
	var (
		id, name, email, roleName string
		teamID                    sql.NullString
		target                    int
		createdAt, updatedAt      string
	)
	if err := row.Scan(&id, &name, &email, &roleName, &teamID, &target, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	role, err := member.ParseRole(roleName)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("user %s: created_at: %w", id, err)
	}
	updated, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %s: updated_at: %w", id, err)
	}
	return member.RehydrateUser(id, name, email, role, teamID.String, target, created, updated), nil
}

// TeamRepository implements member.TeamRepository.
type TeamRepository struct {
	conn database.Connection
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(conn database.Connection) *TeamRepository {
	return &TeamRepository{conn: conn}
}

// Save upserts a team.
func (r *TeamRepository) Save(ctx context.Context, team *member.Team) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO teams (id, name, manager_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			manager_id = excluded.manager_id,
			updated_at = excluded.updated_at`,
		team.ID(), team.Name(), nullString(team.ManagerID()),
		formatTime(team.CreatedAt()), formatTime(team.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save team %s: %w", team.ID(), err)
	}
	return nil
}

// FindByID loads one team.
func (r *TeamRepository) FindByID(ctx context.Context, id string) (*member.Team, error) {
	var (
		teamID, name         string
		managerID            sql.NullString
		createdAt, updatedAt string
	)
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT id, name, manager_id, created_at, updated_at FROM teams WHERE id = ?`, id,
	).Scan(&teamID, &name, &managerID, &createdAt, &updatedAt)
	if database.IsNoRows(err) {
		return nil, domain.NotFoundf("team %s", id)
	}
	if err != nil {
		return nil, err
	}

	created, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("team %s: created_at: %w", id, err)
	}
	updated, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("team %s: updated_at: %w", id, err)
	}
	return member.RehydrateTeam(teamID, name, managerID.String, created, updated), nil
}

var (
	_ member.UserRepository = (*UserRepository)(nil)
	_ member.TeamRepository = (*TeamRepository)(nil)
)

// Package fixtures loads teams, users, projects and tasks from a YAML file
// and feeds them through the command handlers.
package fixtures

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// File is the top-level fixture document.
type File struct {
	Actor    string    `yaml:"actor"`
	Teams    []Team    `yaml:"teams"`
	Users    []User    `yaml:"users"`
	Projects []Project `yaml:"projects"`
	Tasks    []Task    `yaml:"tasks"`
}

type Team struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Manager string `yaml:"manager"`
}

type User struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Email         string `yaml:"email"`
	Role          string `yaml:"role"`
	Team          string `yaml:"team"`
	MonthlyTarget int    `yaml:"monthly_target"`
}

type Project struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Team        string `yaml:"team"`
	Status      string `yaml:"status"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`

	// StartsInDays and EndsInDays place the window relative to the seed day.
	StartsInDays *int `yaml:"starts_in_days"`
	EndsInDays   *int `yaml:"ends_in_days"`
}

type Task struct {
	ID          string   `yaml:"id"`
	Project     string   `yaml:"project"`
	Creator     string   `yaml:"creator"`
	Assignee    string   `yaml:"assignee"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	StoryPoints int      `yaml:"story_points"`
	Difficulty  string   `yaml:"difficulty"`
	Priority    string   `yaml:"priority"`
	DueDate     string   `yaml:"due_date"`
	DueInDays   *int     `yaml:"due_in_days"`
	Tags        []string `yaml:"tags"`
}

// Decode parses a fixture document. Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// ReadFile decodes the fixture file at path.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer fh.Close()
	return Decode(fh)
}

type (
	TeamCreator interface {
		Handle(ctx context.Context, cmd commands.CreateTeamCommand) (*commands.CreateTeamResult, error)
	}
	UserRegistrar interface {
		Handle(ctx context.Context, cmd commands.RegisterUserCommand) (*commands.UserDTO, error)
	}
	ProjectCreator interface {
		Handle(ctx context.Context, cmd commands.CreateProjectCommand) (*queries.ProjectDTO, error)
	}
	TaskCreator interface {
		Handle(ctx context.Context, cmd commands.CreateTaskCommand) (*queries.TaskDTO, error)
	}
)

// Seeder applies fixture files.
type Seeder struct {
	Teams    TeamCreator
	Users    UserRegistrar
	Projects ProjectCreator
	Tasks    TaskCreator
	Logger   *slog.Logger

	// Clock anchors relative dates. Defaults to time.Now.
	Clock func() time.Time
}

// Summary counts what a seed run created.
type Summary struct {
	Teams    int `json:"teams"`
	Users    int `json:"users"`
	Projects int `json:"projects"`
	Tasks    int `json:"tasks"`
}

// Seed creates teams, then users, projects and tasks, stopping at the first failure.
// actor creates projects and tasks that name no creator; the file's own actor
// is used when it is empty.
func (s *Seeder) Seed(ctx context.Context, f *File, actor string) (Summary, error) {
	var sum Summary
	if actor == "" {
		actor = f.Actor
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := s.Clock
	if now == nil {
		now = time.Now
	}
	today := calendar.DateOf(now())

	for _, t := range f.Teams {
		if _, err := s.Teams.Handle(ctx, commands.CreateTeamCommand{TeamID: t.ID, Name: t.Name, ManagerID: t.Manager}); err != nil {
			return sum, fmt.Errorf("team %q: %w", t.Name, err)
		}
		sum.Teams++
	}

	for _, u := range f.Users {
		_, err := s.Users.Handle(ctx, commands.RegisterUserCommand{
			UserID:        u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Role:          u.Role,
			TeamID:        u.Team,
			MonthlyTarget: u.MonthlyTarget,
		})
		if err != nil {
			return sum, fmt.Errorf("user %q: %w", u.Email, err)
		}
		sum.Users++
	}

	for _, p := range f.Projects {
		start, err := resolveDate("start_date", p.StartDate, p.StartsInDays, today)
		if err != nil {
			return sum, fmt.Errorf("project %q: %w", p.Name, err)
		}
		end, err := resolveDate("end_date", p.EndDate, p.EndsInDays, today)
		if err != nil {
			return sum, fmt.Errorf("project %q: %w", p.Name, err)
		}
		_, err = s.Projects.Handle(ctx, commands.CreateProjectCommand{
			ActorID:     actor,
			ProjectID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			TeamID:      p.Team,
			Status:      p.Status,
			StartDate:   start,
			EndDate:     end,
		})
		if err != nil {
			return sum, fmt.Errorf("project %q: %w", p.Name, err)
		}
		sum.Projects++
	}

	for _, t := range f.Tasks {
		creator := t.Creator
		if creator == "" {
			creator = actor
		}
		due, err := resolveDate("due_date", t.DueDate, t.DueInDays, today)
		if err != nil {
			return sum, fmt.Errorf("task %q: %w", t.Title, err)
		}
		_, err = s.Tasks.Handle(ctx, commands.CreateTaskCommand{
			ActorID:     creator,
			TaskID:      t.ID,
			ProjectID:   t.Project,
			AssigneeID:  t.Assignee,
			Title:       t.Title,
			Description: t.Description,
			StoryPoints: t.StoryPoints,
			Difficulty:  t.Difficulty,
			Priority:    t.Priority,
			DueDate:     due,
			Tags:        t.Tags,
		})
		if err != nil {
			return sum, fmt.Errorf("task %q: %w", t.Title, err)
		}
		sum.Tasks++
	}

	logger.InfoContext(ctx, "fixtures seeded",
		"teams", sum.Teams,
		"users", sum.Users,
		"projects", sum.Projects,
		"tasks", sum.Tasks,
	)
	return sum, nil
}

// resolveDate returns the absolute date, or today shifted by offset. Setting
// both is ambiguous and rejected.
func resolveDate(field, absolute string, offset *int, today calendar.Date) (string, error) {
	if offset == nil {
		return absolute, nil
	}
	if absolute != "" {
		return "", domain.InvalidSpecf("%s and its relative form are both set", field)
	}
	return today.AddDays(*offset).String(), nil
}

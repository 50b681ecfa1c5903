package cli

import (
	"fmt"

	internalApp "github.com/felixgeelhaar/perfboard/internal/app"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/fixtures"
	"github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/report"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// Setup
	CreateTeamHandler       *commands.CreateTeamHandler
	RegisterUserHandler     *commands.RegisterUserHandler
	CreateProjectHandler    *commands.CreateProjectHandler
	ReconcileProjectHandler *commands.ReconcileProjectHandler

	// Task lifecycle
	CreateTaskHandler  *commands.CreateTaskHandler
	ClaimTaskHandler   *commands.ClaimTaskHandler
	StartTaskHandler   *commands.StartTaskHandler
	SubmitTaskHandler  *commands.SubmitTaskHandler
	ApproveTaskHandler *commands.ApproveTaskHandler
	RejectTaskHandler  *commands.RejectTaskHandler
	BlockTaskHandler   *commands.BlockTaskHandler
	UnblockTaskHandler *commands.UnblockTaskHandler

	// Queries
	GetTaskHandler            *queries.GetTaskHandler
	ListTasksHandler          *queries.ListTasksHandler
	UpcomingDeadlinesHandler  *queries.UpcomingDeadlinesHandler
	GetScoreReportHandler     *queries.GetScoreReportHandler
	GetDashboardStatsHandler  *queries.GetDashboardStatsHandler
	GetTeamScoreHandler       *queries.GetTeamScoreHandler
	GetProjectProgressHandler *queries.GetProjectProgressHandler
	ListProjectsHandler       *queries.ListProjectsHandler

	ReportRenderer report.Renderer
	Seeder         *fixtures.Seeder
	Metrics        observability.Metrics

	// CurrentUserID is the acting user for lifecycle commands.
	CurrentUserID string
}

// NewApp exposes the container's handlers to the commands.
func NewApp(c *internalApp.Container) *App {
	return &App{
		CreateTeamHandler:         c.CreateTeamHandler,
		RegisterUserHandler:       c.RegisterUserHandler,
		CreateProjectHandler:      c.CreateProjectHandler,
		ReconcileProjectHandler:   c.ReconcileProjectHandler,
		CreateTaskHandler:         c.CreateTaskHandler,
		ClaimTaskHandler:          c.ClaimTaskHandler,
		StartTaskHandler:          c.StartTaskHandler,
		SubmitTaskHandler:         c.SubmitTaskHandler,
		ApproveTaskHandler:        c.ApproveTaskHandler,
		RejectTaskHandler:         c.RejectTaskHandler,
		BlockTaskHandler:          c.BlockTaskHandler,
		UnblockTaskHandler:        c.UnblockTaskHandler,
		GetTaskHandler:            c.GetTaskHandler,
		ListTasksHandler:          c.ListTasksHandler,
		UpcomingDeadlinesHandler:  c.UpcomingDeadlinesHandler,
		GetScoreReportHandler:     c.GetScoreReportHandler,
		GetDashboardStatsHandler:  c.GetDashboardStatsHandler,
		GetTeamScoreHandler:       c.GetTeamScoreHandler,
		GetProjectProgressHandler: c.GetProjectProgressHandler,
		ListProjectsHandler:       c.ListProjectsHandler,
		ReportRenderer:            c.ReportRenderer,
		Seeder:                    c.Seeder,
		Metrics:                   c.Metrics,
		CurrentUserID:             c.Config.UserID,
	}
}

// SetCurrentUserID updates the acting user.
func (a *App) SetCurrentUserID(id string) {
	a.CurrentUserID = id
}

// Actor returns the acting user or explains how to set one.
func (a *App) Actor() (string, error) {
	if a.CurrentUserID == "" {
		return "", fmt.Errorf("no acting user: set PERFBOARD_USER_ID or pass --as <user-id>")
	}
	return a.CurrentUserID, nil
}

// Global app instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the app or an error telling the user the store is unavailable.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, errNoStore
	}
	return app, nil
}

var errNoStore = fmt.Errorf("perfboard store is not available, check DATABASE_URL or SQLITE_PATH")

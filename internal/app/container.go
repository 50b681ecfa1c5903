package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/scoring"
	"github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/fixtures"
	"github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/report"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/lock"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/perfboard/pkg/config"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Clock   sharedApplication.Clock

	DBConn      database.Connection
	RedisClient *redis.Client
	Locker      lock.Locker
	Policy      scoring.Policy

	*Repositories

	// Command handlers
	CreateTeamHandler       *commands.CreateTeamHandler
	RegisterUserHandler     *commands.RegisterUserHandler
	CreateProjectHandler    *commands.CreateProjectHandler
	ReconcileProjectHandler *commands.ReconcileProjectHandler
	CreateTaskHandler       *commands.CreateTaskHandler
	ClaimTaskHandler        *commands.ClaimTaskHandler
	StartTaskHandler        *commands.StartTaskHandler
	SubmitTaskHandler       *commands.SubmitTaskHandler
	ApproveTaskHandler      *commands.ApproveTaskHandler
	RejectTaskHandler       *commands.RejectTaskHandler
	BlockTaskHandler        *commands.BlockTaskHandler
	UnblockTaskHandler      *commands.UnblockTaskHandler

	// Query handlers
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
}

// Option adjusts a container before its handlers are wired.
type Option func(*Container)

// WithClock pins the clock every handler reads.
func WithClock(clock sharedApplication.Clock) Option {
	return func(c *Container) { c.Clock = clock }
}

// NewContainer opens the configured database, brings its schema up to date
// and wires every handler on top of it.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	policy, err := scoring.NewPolicy(cfg.ScorePenaltyPerDay, cfg.ScoreMinFloorPercent)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Clock:   sharedApplication.SystemClock,
		Policy:  policy,
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := openConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.DBConn = conn
	logger.Debug("connected to database", "driver", conn.Driver())

	if err := migrations.Run(ctx, conn); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	c.Repositories, err = NewRepositoryFactory(conn).Build()
	if err != nil {
		c.Close()
		return nil, err
	}

	if err := c.initLocker(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.wireHandlers()
	return c, nil
}

func openConnection(ctx context.Context, cfg *config.Config) (database.Connection, error) {
	dbCfg := database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	}
	if dbCfg.Driver == database.DriverSQLite && dbCfg.SQLitePath == "" {
		dbCfg.SQLitePath = database.DefaultSQLitePath()
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// initLocker shares task locks through Redis when it is configured. Outside
// production an unreachable Redis degrades to a process-local lock.
func (c *Container) initLocker(ctx context.Context) error {
	cfg := c.Config
	if !cfg.UsesRedisLock() {
		c.Locker = lock.NewLocalLocker(cfg.LockWait)
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if cfg.IsProduction() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, task locks are process-local", "error", err)
		c.Locker = lock.NewLocalLocker(cfg.LockWait)
		return nil
	}

	c.RedisClient = client
	c.Locker = lock.NewRedisLocker(client, lock.RedisConfig{TTL: cfg.LockTTL, Wait: cfg.LockWait}, c.Logger)
	c.Logger.Debug("connected to Redis")
	return nil
}

func (c *Container) wireHandlers() {
	r := c.Repositories
	clock := c.Clock

	deps := commands.TaskDependencies{
		Tasks:      r.Tasks,
		Projects:   r.Projects,
		Users:      r.Users,
		Outbox:     r.Outbox,
		UnitOfWork: r.UnitOfWork,
		Locker:     c.Locker,
		Policy:     c.Policy,
		Clock:      clock,
		Metrics:    c.Metrics,
	}

	c.CreateTeamHandler = commands.NewCreateTeamHandler(r.Teams, r.Outbox, r.UnitOfWork, clock)
	c.RegisterUserHandler = commands.NewRegisterUserHandler(r.Users, r.Teams, r.Outbox, r.UnitOfWork, clock, c.Config.DefaultMonthlyTarget)
	c.CreateProjectHandler = commands.NewCreateProjectHandler(r.Projects, r.Users, r.Teams, r.Outbox, r.UnitOfWork, clock)
	c.ReconcileProjectHandler = commands.NewReconcileProjectHandler(r.Projects, r.Tasks, r.Users, r.Outbox, r.UnitOfWork, clock)
	c.CreateTaskHandler = commands.NewCreateTaskHandler(deps)
	c.ClaimTaskHandler = commands.NewClaimTaskHandler(deps)
	c.StartTaskHandler = commands.NewStartTaskHandler(deps)
	c.SubmitTaskHandler = commands.NewSubmitTaskHandler(deps)
	c.ApproveTaskHandler = commands.NewApproveTaskHandler(deps)
	c.RejectTaskHandler = commands.NewRejectTaskHandler(deps)
	c.BlockTaskHandler = commands.NewBlockTaskHandler(deps)
	c.UnblockTaskHandler = commands.NewUnblockTaskHandler(deps)

	c.GetTaskHandler = queries.NewGetTaskHandler(r.Tasks)
	c.ListTasksHandler = queries.NewListTasksHandler(r.Tasks)
	c.UpcomingDeadlinesHandler = queries.NewUpcomingDeadlinesHandler(r.Tasks)
	c.GetScoreReportHandler = queries.NewGetScoreReportHandler(r.Tasks, r.Users, clock)
	c.GetDashboardStatsHandler = queries.NewGetDashboardStatsHandler(r.Tasks, r.Users, clock)
	c.GetTeamScoreHandler = queries.NewGetTeamScoreHandler(r.Tasks, r.Users, r.Teams, clock)
	c.GetProjectProgressHandler = queries.NewGetProjectProgressHandler(r.Projects, r.Tasks)
	c.ListProjectsHandler = queries.NewListProjectsHandler(r.Projects)

	c.ReportRenderer = report.NewPDFRenderer()
	c.Seeder = &fixtures.Seeder{
		Teams:    c.CreateTeamHandler,
		Users:    c.RegisterUserHandler,
		Projects: c.CreateProjectHandler,
		Tasks:    c.CreateTaskHandler,
		Logger:   c.Logger,
		Clock:    clock,
	}
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Debug("database connection closed", "driver", c.DBConn.Driver())
		}
	}
}

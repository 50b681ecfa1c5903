package app

import (
	"fmt"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/member"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/project"
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/task"
	"github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/perfboard/internal/shared/application"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/outbox"
)

// Repositories is the set of stores every handler draws from. All of them
// share one connection so a unit of work spans them.
type Repositories struct {
	Tasks      task.Repository
	Projects   project.Repository
	Users      member.UserRepository
	Teams      member.TeamRepository
	Outbox     outbox.Repository
	UnitOfWork sharedApplication.UnitOfWork
}

// RepositoryFactory creates repositories on top of a database connection.
type RepositoryFactory struct {
	conn database.Connection
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// Driver reports which backend the factory builds for.
func (f *RepositoryFactory) Driver() database.Driver {
	if f.conn == nil {
		return ""
	}
	return f.conn.Driver()
}

// Build returns the full repository set.
func (f *RepositoryFactory) Build() (*Repositories, error) {
	if f.conn == nil {
		return nil, fmt.Errorf("repository factory: no database connection")
	}
	if !f.Driver().IsValid() {
		return nil, fmt.Errorf("unsupported driver: %s", f.Driver())
	}

	return &Repositories{
		Tasks:      persistence.NewTaskRepository(f.conn),
		Projects:   persistence.NewProjectRepository(f.conn),
		Users:      persistence.NewUserRepository(f.conn),
		Teams:      persistence.NewTeamRepository(f.conn),
		Outbox:     outbox.NewSQLRepository(f.conn),
		UnitOfWork: database.NewUnitOfWork(f.conn),
	}, nil
}

package app

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// driverOnlyConnection reports a driver and nothing else.
type driverOnlyConnection struct {
	database.Connection
	driver database.Driver
}

func (c driverOnlyConnection) Driver() database.Driver { return c.driver }

func TestRepositoryFactory_Build(t *testing.T) {
	conn, err := sqlite.NewConnection(context.Background(), database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	defer conn.Close()

	factory := NewRepositoryFactory(conn)
	assert.Equal(t, database.DriverSQLite, factory.Driver())

	repos, err := factory.Build()
	require.NoError(t, err)
	assert.NotNil(t, repos.Tasks)
	assert.NotNil(t, repos.Projects)
	assert.NotNil(t, repos.Users)
	assert.NotNil(t, repos.Teams)
	assert.NotNil(t, repos.Outbox)
	assert.NotNil(t, repos.UnitOfWork)
}

func TestRepositoryFactory_Errors(t *testing.T) {
	t.Run("no connection", func(t *testing.T) {
		_, err := NewRepositoryFactory(nil).Build()
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewRepositoryFactory(driverOnlyConnection{driver: "mysql"}).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported driver: mysql")
	})
}

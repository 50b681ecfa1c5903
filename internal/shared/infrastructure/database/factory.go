package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and parameterizes a backend.
type Config struct {
	// Driver is detected from URL when empty or "auto".
	Driver Driver
	// URL is the PostgreSQL connection string.
	URL string
	// SQLitePath defaults to DefaultSQLitePath.
	SQLitePath string
	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// Opener opens a connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

// openers is filled from the init functions of the driver packages.
var openers = map[Driver]Opener{}

// RegisterPostgresDriver registers the PostgreSQL opener.
func RegisterPostgresDriver(open Opener) { openers[DriverPostgres] = open }

// RegisterSQLiteDriver registers the SQLite opener.
func RegisterSQLiteDriver(open Opener) { openers[DriverSQLite] = open }

// NewConnection opens a connection with the driver cfg selects. The driver
// package must have been imported for its registration to run.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}
	if !driver.IsValid() {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("%s driver not registered", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath is ~/.perfboard/data.db, or ./.perfboard/data.db when
// the home directory is unknown.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".perfboard", "data.db")
}

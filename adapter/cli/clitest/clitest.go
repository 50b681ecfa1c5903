// Package clitest builds a CLI application over a throwaway SQLite store for
// command tests.
package clitest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	internalApp "github.com/felixgeelhaar/perfboard/internal/app"
	"github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/fixtures"
	"github.com/felixgeelhaar/perfboard/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// Today is the instant every handler sees.
var Today = time.Date(2024, 11, 13, 12, 0, 0, 0, time.UTC)

// NewApp seeds the demo fixtures into a fresh store, installs the app as the
// global CLI app acting as actor, and undoes both when the test ends.
func NewApp(t *testing.T, actor string) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:               "test",
		LocalMode:            true,
		DatabaseDriver:       "sqlite",
		SQLitePath:           filepath.Join(t.TempDir(), "perfboard.db"),
		LockWait:             time.Second,
		ScorePenaltyPerDay:   1,
		ScoreMinFloorPercent: 20,
		DefaultMonthlyTarget: 50,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger,
		internalApp.WithClock(func() time.Time { return Today }))
	require.NoError(t, err)

	f, err := fixtures.ReadFile(DemoFixtures())
	require.NoError(t, err)
	_, err = container.Seeder.Seed(context.Background(), f, "")
	require.NoError(t, err)

	a := cli.NewApp(container)
	a.SetCurrentUserID(actor)
	cli.SetApp(a)
	cli.SetJSONOutput(false)

	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return a
}

// DemoFixtures returns the path of the bundled demo fixture file.
func DemoFixtures() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "fixtures", "demo.yaml")
}

// Run invokes cmd's RunE with args and returns what it printed.
func Run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	defer cmd.SetOut(nil)

	err := cmd.RunE(cmd, args)
	return out.String(), err
}

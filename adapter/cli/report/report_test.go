package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/adapter/cli/clitest"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	month, pdfPath, org = "", "", false
}

func completeCart(t *testing.T, app *cli.App) {
	t.Helper()
	ctx := context.Background()
	_, err := app.StartTaskHandler.Handle(ctx, commands.StartTaskCommand{TaskID: "task-cart", CallerID: "dev-ana"})
	require.NoError(t, err)
	_, err = app.SubmitTaskHandler.Handle(ctx, commands.SubmitTaskCommand{TaskID: "task-cart", CallerID: "dev-ana"})
	require.NoError(t, err)
	_, err = app.ApproveTaskHandler.Handle(ctx, commands.ApproveTaskCommand{TaskID: "task-cart", ActorID: "mgr-tom"})
	require.NoError(t, err)
}

func TestScoreCmd(t *testing.T) {
	app := clitest.NewApp(t, "dev-ana")
	resetFlags()
	completeCart(t, app)

	out, err := clitest.Run(t, scoreCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Souza - 2024-11")
	assert.Contains(t, out, "Cart persistence")
	assert.Contains(t, out, "Total: 10 / 50")
}

func TestScoreCmd_WritesPDF(t *testing.T) {
	app := clitest.NewApp(t, "pm-priya")
	resetFlags()
	completeCart(t, app)

	pdfPath = filepath.Join(t.TempDir(), "ana.pdf")
	defer resetFlags()

	out, err := clitest.Run(t, scoreCmd, "dev-ana")
	require.NoError(t, err)
	assert.Contains(t, out, "PDF written to")

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestScoreCmd_EmptyMonth(t *testing.T) {
	clitest.NewApp(t, "dev-ben")
	resetFlags()
	month = "2024-10"
	defer resetFlags()

	out, err := clitest.Run(t, scoreCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No completed tasks this month.")
	assert.Contains(t, out, "Total: 0 / 40")
}

func TestDashboardCmd(t *testing.T) {
	app := clitest.NewApp(t, "dev-ana")
	resetFlags()
	completeCart(t, app)

	t.Run("acting user", func(t *testing.T) {
		out, err := clitest.Run(t, dashboardCmd)
		require.NoError(t, err)
		assert.Contains(t, out, "Score:        10 / 50")
		assert.Contains(t, out, "Productivity: 20%")
		assert.Contains(t, out, "Completed:    1")
	})

	t.Run("organisation", func(t *testing.T) {
		org = true
		defer resetFlags()
		cli.SetJSONOutput(true)
		defer cli.SetJSONOutput(false)

		out, err := clitest.Run(t, dashboardCmd)
		require.NoError(t, err)
		assert.Contains(t, out, `"target_score": 90`)
		assert.Contains(t, out, `"monthly_score": 10`)
	})
}

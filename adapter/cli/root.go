package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/felixgeelhaar/perfboard/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	actAs      string
	jsonOutput bool
	logger     *slog.Logger
)

// running times the command in flight. Cobra skips the post-run hook on
// failure, so Execute stops it with the error instead.
var running *observability.Timer

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "perfboard",
	Short: "perfboard - developer performance board",
	Long: `perfboard tracks story-point tasks through their lifecycle,
scores them against due dates and reports monthly results per developer,
team and project.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		if actAs != "" && app != nil {
			app.SetCurrentUserID(actAs)
		}

		ctx := observability.WithCorrelationID(cmd.Context(), uuid.NewString())
		if app != nil && app.CurrentUserID != "" {
			ctx = observability.WithActorID(ctx, app.CurrentUserID)
		}
		ctx = observability.WithOperation(ctx, cmd.CommandPath())
		cmd.SetContext(ctx)

		running = observability.StartTimer(cmd.CommandPath()).WithLogger(logger)
		if app != nil && app.Metrics != nil {
			running = running.WithMetrics(app.Metrics)
		}
		logger.DebugContext(ctx, "command start", "command", cmd.CommandPath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if running != nil {
			running.Stop(nil)
			running = nil
		}
	},
}

// Execute runs the root command and reports failures in user terms.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if running != nil {
			running.Stop(err)
			running = nil
		}
		fmt.Fprintln(os.Stderr, UserMessage(err))
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actAs, "as", "", "act as this user id (defaults to PERFBOARD_USER_ID)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

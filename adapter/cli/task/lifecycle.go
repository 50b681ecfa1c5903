package task

import (
	"context"
	"fmt"
	"io"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/spf13/cobra"
)

var (
	overrideScore   int
	overridePenalty int
	blockReason     string
)

// step runs one lifecycle operation for the acting user and prints the result.
type step func(ctx context.Context, app *cli.App, taskID, actor string) (*queries.TaskDTO, error)

func lifecycleCmd(use, short, long, done string, run step) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			result, err := run(cmd.Context(), app, args[0], actor)
			if err != nil {
				return err
			}

			return cli.Render(cmd, result, func(w io.Writer) {
				fmt.Fprintln(w, done)
				cli.Rule(w, 40)
				printTask(w, result)
			})
		},
	}
}

var claimCmd = lifecycleCmd("claim", "Claim an available task",
	`Claim an available task for yourself. When two developers claim the same
task at once, exactly one of them gets it.`,
	"Task claimed!",
	func(ctx context.Context, app *cli.App, id, actor string) (*queries.TaskDTO, error) {
		return app.ClaimTaskHandler.Handle(ctx, commands.ClaimTaskCommand{TaskID: id, UserID: actor})
	})

var startCmd = lifecycleCmd("start", "Start working on your task", "", "Task started!",
	func(ctx context.Context, app *cli.App, id, actor string) (*queries.TaskDTO, error) {
		return app.StartTaskHandler.Handle(ctx, commands.StartTaskCommand{TaskID: id, CallerID: actor})
	})

var submitCmd = lifecycleCmd("submit", "Submit your task for review", "", "Task submitted for review!",
	func(ctx context.Context, app *cli.App, id, actor string) (*queries.TaskDTO, error) {
		return app.SubmitTaskHandler.Handle(ctx, commands.SubmitTaskCommand{TaskID: id, CallerID: actor})
	})

var approveCmd = lifecycleCmd("approve", "Approve a task under review and score it",
	`Approve a task under review. The score is the base score minus the delay
penalty, never below the configured floor. --score and --penalty override
the computed score or the per-day penalty for this task only.

Examples:
  perfboard task approve task-payments
  perfboard task approve task-payments --penalty 2
  perfboard task approve task-payments --score 12`,
	"Task approved!",
	func(ctx context.Context, app *cli.App, id, actor string) (*queries.TaskDTO, error) {
		cmd := commands.ApproveTaskCommand{TaskID: id, ActorID: actor}
		if overrideScore >= 0 {
			score := overrideScore
			cmd.Score = &score
		}
		if overridePenalty > 0 {
			penalty := overridePenalty
			cmd.PenaltyPerDay = &penalty
		}
		return app.ApproveTaskHandler.Handle(ctx, cmd)
	})

var rejectCmd = lifecycleCmd("reject", "Send a task under review back for rework", "", "Task sent back for rework.",
	func(ctx context.Context, app *cli.App, id, actor string) (*queries.TaskDTO, error) {
		return app.RejectTaskHandler.Handle(ctx, commands.RejectTaskCommand{TaskID: id, ActorID: actor})
	})

var blockCmd = lifecycleCmd("block", "Mark a task as blocked", "", "Task blocked.",
	func(ctx context.Context, app *cli.App, id, actor string) (*queries.TaskDTO, error) {
		return app.BlockTaskHandler.Handle(ctx, commands.BlockTaskCommand{TaskID: id, ActorID: actor, Reason: blockReason})
	})

var unblockCmd = lifecycleCmd("unblock", "Return a blocked task to where it was", "", "Task unblocked.",
	func(ctx context.Context, app *cli.App, id, actor string) (*queries.TaskDTO, error) {
		return app.UnblockTaskHandler.Handle(ctx, commands.UnblockTaskCommand{TaskID: id, ActorID: actor})
	})

func init() {
	approveCmd.Flags().IntVar(&overrideScore, "score", -1, "final score to record instead of the computed one")
	approveCmd.Flags().IntVar(&overridePenalty, "penalty", 0, "penalty per late day for this task")
	blockCmd.Flags().StringVarP(&blockReason, "reason", "r", "", "why the task is blocked")
}

package project

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List projects",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		projects, err := app.ListProjectsHandler.Handle(cmd.Context())
		if err != nil {
			return err
		}

		return cli.Render(cmd, projects, func(w io.Writer) {
			if len(projects) == 0 {
				fmt.Fprintln(w, "No projects found.")
				return
			}
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tTASKS\tDONE\tPROGRESS")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d%%\n",
					p.ID, p.Name, p.Status, p.TasksCount, p.CompletedTasksCount, p.Progress)
			}
			_ = tw.Flush()
		})
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <project-id>",
	Short: "Show a project's completion progress",
	Long: `Show the cached progress counters next to a fresh count of the
project's tasks. A mismatch can be repaired with 'perfboard project reconcile'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.GetProjectProgressHandler.Handle(cmd.Context(), queries.GetProjectProgressQuery{ProjectID: args[0]})
		if err != nil {
			return err
		}

		return cli.Render(cmd, result, func(w io.Writer) {
			printProject(w, &result.ProjectDTO)
			if !result.InSync {
				fmt.Fprintf(w, "  Recount:  %d%% (%d of %d tasks), run 'perfboard project reconcile %s'\n",
					result.RecomputedProgress, result.RecomputedCompleted, result.RecomputedTasks, result.ID)
			}
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <project-id>",
	Short: "Recount a project's tasks and repair its progress counters",
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

		result, err := app.ReconcileProjectHandler.Handle(cmd.Context(), commands.ReconcileProjectCommand{
			ActorID:   actor,
			ProjectID: args[0],
		})
		if err != nil {
			return err
		}

		return cli.Render(cmd, result, func(w io.Writer) {
			if result.Changed {
				fmt.Fprintln(w, "Project counters repaired.")
			} else {
				fmt.Fprintln(w, "Project counters were already correct.")
			}
			cli.Rule(w, 40)
			printProject(w, &result.Project)
		})
	},
}

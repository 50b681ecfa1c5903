package task

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/spf13/cobra"
)

var (
	filterProject  string
	filterAssignee string
	filterStatus   string
	mine           bool
	limit          int

	upcomingAssignee string
	upcomingMine     bool
	upcomingLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks, oldest first, with optional filters.

Examples:
  perfboard task list --project proj-shop
  perfboard task list --status available
  perfboard task list --mine --status in_progress`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		query := queries.ListTasksQuery{
			ProjectID:  filterProject,
			AssigneeID: filterAssignee,
			Status:     filterStatus,
			Limit:      limit,
		}
		if mine {
			if query.AssigneeID, err = app.Actor(); err != nil {
				return err
			}
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), query)
		if err != nil {
			return err
		}

		return cli.Render(cmd, tasks, func(w io.Writer) {
			printTable(w, tasks)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.GetTaskHandler.Handle(cmd.Context(), queries.GetTaskQuery{TaskID: args[0]})
		if err != nil {
			return err
		}

		return cli.Render(cmd, result, func(w io.Writer) {
			printTask(w, result)
		})
	},
}

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Show the open tasks due soonest",
	Long: `Show unfinished tasks ordered by due date.

Examples:
  perfboard task upcoming
  perfboard task upcoming --mine --limit 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		query := queries.UpcomingDeadlinesQuery{AssigneeID: upcomingAssignee, Limit: upcomingLimit}
		if upcomingMine {
			if query.AssigneeID, err = app.Actor(); err != nil {
				return err
			}
		}

		tasks, err := app.UpcomingDeadlinesHandler.Handle(cmd.Context(), query)
		if err != nil {
			return err
		}

		return cli.Render(cmd, tasks, func(w io.Writer) {
			printTable(w, tasks)
		})
	},
}

func printTable(w io.Writer, tasks []queries.TaskDTO) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}

	fmt.Fprintf(w, "Tasks (%d):\n", len(tasks))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tASSIGNEE\tPOINTS\tDUE\tSCORE")
	for i := range tasks {
		t := &tasks[i]
		score := "-"
		if t.FinalScore != nil {
			score = fmt.Sprint(*t.FinalScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			t.ID, t.Title, t.Status, cli.OrDash(t.AssigneeID), t.StoryPoints, t.DueDate, score)
	}
	_ = tw.Flush()
}

func init() {
	listCmd.Flags().StringVarP(&filterProject, "project", "p", "", "only tasks in this project")
	listCmd.Flags().StringVarP(&filterAssignee, "assignee", "a", "", "only tasks assigned to this user")
	listCmd.Flags().StringVarP(&filterStatus, "status", "s", "", "available, todo, in_progress, review, completed or blocked")
	listCmd.Flags().BoolVar(&mine, "mine", false, "only tasks assigned to the acting user")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of tasks (0 = all)")

	upcomingCmd.Flags().StringVarP(&upcomingAssignee, "assignee", "a", "", "only tasks assigned to this user")
	upcomingCmd.Flags().BoolVar(&upcomingMine, "mine", false, "only tasks assigned to the acting user")
	upcomingCmd.Flags().IntVarP(&upcomingLimit, "limit", "n", 5, "maximum number of tasks")
}

package task

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/spf13/cobra"
)

var (
	taskID      string
	projectID   string
	assigneeID  string
	description string
	storyPoints int
	difficulty  string
	priority    string
	dueDate     string
	tags        []string
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a task",
	Long: `Create a task in a project. Only owners, team managers and PMs may
create tasks. Without --assignee the task is available for any developer
to claim.

Examples:
  perfboard task create "Payment gateway" -d "Integrate the card provider" --project proj-shop --points 8 --difficulty Hard --due 2024-11-20
  perfboard task create "Cart persistence" -d "Keep carts across sessions" --project proj-shop --points 5 --assignee dev-ana --due 2024-11-15 --tags backend,cart`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		actor, err := app.Actor()
		if err != nil {
			return err
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), commands.CreateTaskCommand{
			ActorID:     actor,
			TaskID:      taskID,
			ProjectID:   projectID,
			AssigneeID:  assigneeID,
			Title:       args[0],
			Description: description,
			StoryPoints: storyPoints,
			Difficulty:  difficulty,
			Priority:    priority,
			DueDate:     dueDate,
			Tags:        tags,
		})
		if err != nil {
			return err
		}

		return cli.Render(cmd, result, func(w io.Writer) {
			fmt.Fprintln(w, "Task created!")
			cli.Rule(w, 40)
			printTask(w, result)
		})
	},
}

func init() {
	createCmd.Flags().StringVar(&taskID, "id", "", "task id (generated when empty)")
	createCmd.Flags().StringVarP(&projectID, "project", "p", "", "project id")
	createCmd.Flags().StringVarP(&assigneeID, "assignee", "a", "", "assign directly to this developer")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "task description (at least 10 characters)")
	createCmd.Flags().IntVar(&storyPoints, "points", 0, "story points: 1, 2, 3, 5, 8 or 13")
	createCmd.Flags().StringVar(&difficulty, "difficulty", "Medium", "Easy, Medium or Hard")
	createCmd.Flags().StringVar(&priority, "priority", "", "low, medium, high or urgent")
	createCmd.Flags().StringVar(&dueDate, "due", "", "due date (YYYY-MM-DD)")
	createCmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tags")
	_ = createCmd.MarkFlagRequired("project")
	_ = createCmd.MarkFlagRequired("points")
	_ = createCmd.MarkFlagRequired("due")
	_ = createCmd.MarkFlagRequired("description")
}

package project

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/spf13/cobra"
)

var (
	projectID   string
	description string
	teamID      string
	status      string
	startDate   string
	endDate     string
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Long: `Create a project. Only owners, team managers and PMs may create projects.

Examples:
  perfboard project create "E-commerce Platform" --team team-checkout --start 2024-11-01 --end 2025-01-31`,
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

		result, err := app.CreateProjectHandler.Handle(cmd.Context(), commands.CreateProjectCommand{
			ActorID:     actor,
			ProjectID:   projectID,
			Name:        args[0],
			Description: description,
			TeamID:      teamID,
			Status:      status,
			StartDate:   startDate,
			EndDate:     endDate,
		})
		if err != nil {
			return err
		}

		return cli.Render(cmd, result, func(w io.Writer) {
			fmt.Fprintln(w, "Project created!")
			cli.Rule(w, 40)
			printProject(w, result)
		})
	},
}

func init() {
	createCmd.Flags().StringVar(&projectID, "id", "", "project id (generated when empty)")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	createCmd.Flags().StringVarP(&teamID, "team", "t", "", "owning team id")
	createCmd.Flags().StringVar(&status, "status", "", "planning, in_progress, completed or on_hold")
	createCmd.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&endDate, "end", "", "end date (YYYY-MM-DD)")
}

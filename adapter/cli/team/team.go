package team

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/spf13/cobra"
)

// Cmd is the team command group
var Cmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams and see their monthly scores",
}

var (
	teamID    string
	managerID string
	month     string
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.CreateTeamHandler.Handle(cmd.Context(), commands.CreateTeamCommand{
			ActorID:   app.CurrentUserID,
			TeamID:    teamID,
			Name:      args[0],
			ManagerID: managerID,
		})
		if err != nil {
			return err
		}

		return cli.Render(cmd, result, func(w io.Writer) {
			fmt.Fprintln(w, "Team created!")
			cli.Rule(w, 40)
			fmt.Fprintf(w, "  ID:   %s\n", result.TeamID)
			fmt.Fprintf(w, "  Name: %s\n", result.Name)
		})
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <team-id>",
	Short: "Show a team's score for a month",
	Long: `Show the team total and each member's contribution for a month,
highest score first. Defaults to the current month.

Examples:
  perfboard team score team-checkout
  perfboard team score team-checkout --month 2024-11`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.GetTeamScoreHandler.Handle(cmd.Context(), queries.GetTeamScoreQuery{TeamID: args[0], Month: month})
		if err != nil {
			return err
		}

		return cli.Render(cmd, result, func(w io.Writer) {
			fmt.Fprintf(w, "%s - %s\n", result.TeamName, result.Month)
			cli.Rule(w, 50)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MEMBER\tROLE\tSCORE\tTARGET\tPRODUCTIVITY")
			for _, m := range result.Members {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d%%\n", m.Name, m.Role, m.MonthlyScore, m.MonthlyTarget, m.Productivity)
			}
			_ = tw.Flush()
			cli.Rule(w, 50)
			fmt.Fprintf(w, "Team total: %d\n", result.TotalScore)
		})
	},
}

func init() {
	createCmd.Flags().StringVar(&teamID, "id", "", "team id (generated when empty)")
	createCmd.Flags().StringVarP(&managerID, "manager", "m", "", "managing user id")
	scoreCmd.Flags().StringVar(&month, "month", "", "month (YYYY-MM), current month when empty")

	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(scoreCmd)
}

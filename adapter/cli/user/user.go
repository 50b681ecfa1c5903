package user

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/commands"
	"github.com/spf13/cobra"
)

// Cmd is the user command group
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var (
	userID        string
	email         string
	role          string
	teamID        string
	monthlyTarget int
)

var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register a user",
	Long: `Register or update a user. Registering an existing id updates the
user's name, email, role, team and monthly target.

Roles: owner, team_manager, pm, developer.

Examples:
  perfboard user register "Ana Souza" --id dev-ana --email ana@example.com --role developer --team team-checkout --target 50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.RegisterUserHandler.Handle(cmd.Context(), commands.RegisterUserCommand{
			UserID:        userID,
			Name:          args[0],
			Email:         email,
			Role:          role,
			TeamID:        teamID,
			MonthlyTarget: monthlyTarget,
		})
		if err != nil {
			return err
		}

		return cli.Render(cmd, result, func(w io.Writer) {
			fmt.Fprintln(w, "User registered!")
			cli.Rule(w, 40)
			fmt.Fprintf(w, "  ID:     %s\n", result.ID)
			fmt.Fprintf(w, "  Name:   %s <%s>\n", result.Name, result.Email)
			fmt.Fprintf(w, "  Role:   %s\n", result.Role)
			fmt.Fprintf(w, "  Team:   %s\n", cli.OrDash(result.TeamID))
			fmt.Fprintf(w, "  Target: %d points/month\n", result.MonthlyTarget)
		})
	},
}

func init() {
	registerCmd.Flags().StringVar(&userID, "id", "", "user id (generated when empty)")
	registerCmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	registerCmd.Flags().StringVarP(&role, "role", "r", "developer", "owner, team_manager, pm or developer")
	registerCmd.Flags().StringVarP(&teamID, "team", "t", "", "team id")
	registerCmd.Flags().IntVar(&monthlyTarget, "target", 0, "monthly score target (defaults to DEFAULT_MONTHLY_TARGET)")
	_ = registerCmd.MarkFlagRequired("email")

	Cmd.AddCommand(registerCmd)
}

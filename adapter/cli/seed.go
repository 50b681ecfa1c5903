package cli

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/fixtures"
	"github.com/spf13/cobra"
)

// SeedCmd loads teams, users, projects and tasks from a YAML file.
var SeedCmd = &cobra.Command{
	Use:   "seed <fixtures.yaml>",
	Short: "Load teams, users, projects and tasks from a YAML file",
	Long: `Load fixture data through the regular commands, so every record is
validated and announces itself on the outbox.

Projects and tasks are created by --as, falling back to the file's actor.

Examples:
  perfboard seed fixtures/demo.yaml
  perfboard seed team.yaml --as pm-priya`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}

		f, err := fixtures.ReadFile(args[0])
		if err != nil {
			return err
		}

		sum, err := a.Seeder.Seed(cmd.Context(), f, a.CurrentUserID)
		if err != nil {
			return err
		}

		return Render(cmd, sum, func(w io.Writer) {
			fmt.Fprintln(w, "Fixtures loaded!")
			Rule(w, 40)
			fmt.Fprintf(w, "  Teams:    %d\n", sum.Teams)
			fmt.Fprintf(w, "  Users:    %d\n", sum.Users)
			fmt.Fprintf(w, "  Projects: %d\n", sum.Projects)
			fmt.Fprintf(w, "  Tasks:    %d\n", sum.Tasks)
		})
	},
}

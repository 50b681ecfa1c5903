package project

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/spf13/cobra"
)

// Cmd is the project command group
var Cmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create projects and follow their completion progress.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(progressCmd)
	Cmd.AddCommand(reconcileCmd)
}

func printProject(w io.Writer, p *queries.ProjectDTO) {
	fmt.Fprintf(w, "  ID:       %s\n", p.ID)
	fmt.Fprintf(w, "  Name:     %s\n", p.Name)
	fmt.Fprintf(w, "  Team:     %s\n", cli.OrDash(p.TeamID))
	fmt.Fprintf(w, "  Status:   %s\n", p.Status)
	if p.StartDate != "" || p.EndDate != "" {
		fmt.Fprintf(w, "  Window:   %s .. %s\n", cli.OrDash(p.StartDate), cli.OrDash(p.EndDate))
	}
	fmt.Fprintf(w, "  Progress: %d%% (%d of %d tasks)\n", p.Progress, p.CompletedTasksCount, p.TasksCount)
}

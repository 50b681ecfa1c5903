package report

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	pdfreport "github.com/felixgeelhaar/perfboard/internal/performance/infrastructure/report"
	"github.com/spf13/cobra"
)

// Cmd is the report command group
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Monthly score reports and dashboards",
}

var (
	month   string
	pdfPath string
	org     bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [user-id]",
	Short: "Show a user's scored tasks for a month",
	Long: `Show every task a user completed in a month with its base score,
delay penalty and final score. Defaults to the acting user and the current
month. --pdf also writes the report to a PDF file.

Examples:
  perfboard report score
  perfboard report score dev-ana --month 2024-11
  perfboard report score dev-ana --pdf ana-2024-11.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		userID, err := subject(app, args)
		if err != nil {
			return err
		}

		result, err := app.GetScoreReportHandler.Handle(cmd.Context(), queries.GetScoreReportQuery{UserID: userID, Month: month})
		if err != nil {
			return err
		}

		if pdfPath != "" {
			if err := pdfreport.WriteFile(app.ReportRenderer, pdfPath, result); err != nil {
				return fmt.Errorf("failed to write PDF: %w", err)
			}
		}

		return cli.Render(cmd, result, func(w io.Writer) {
			printScoreReport(w, result)
			if pdfPath != "" {
				fmt.Fprintf(w, "\nPDF written to %s\n", pdfPath)
			}
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [user-id]",
	Short: "Show monthly dashboard figures",
	Long: `Show the monthly score, target, completed and pending task counts,
average score and productivity. Defaults to the acting user. --org sums
every developer instead.

Examples:
  perfboard report dashboard
  perfboard report dashboard dev-ben --month 2024-11
  perfboard report dashboard --org`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		query := queries.GetDashboardStatsQuery{Month: month}
		if !org {
			if query.UserID, err = subject(app, args); err != nil {
				return err
			}
		}

		stats, err := app.GetDashboardStatsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return err
		}

		return cli.Render(cmd, stats, func(w io.Writer) {
			scope := query.UserID
			if org {
				scope = "all developers"
			}
			fmt.Fprintf(w, "Dashboard - %s (%s)\n", stats.Month, scope)
			cli.Rule(w, 40)
			fmt.Fprintf(w, "  Score:        %d / %d\n", stats.MonthlyScore, stats.TargetScore)
			fmt.Fprintf(w, "  Productivity: %d%%\n", stats.Productivity)
			fmt.Fprintf(w, "  Completed:    %d\n", stats.CompletedTasks)
			fmt.Fprintf(w, "  Pending:      %d\n", stats.PendingTasks)
			fmt.Fprintf(w, "  Average:      %.1f\n", stats.AverageScore)
		})
	},
}

func subject(app *cli.App, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return app.Actor()
}

func printScoreReport(w io.Writer, r *queries.ScoreReport) {
	fmt.Fprintf(w, "%s - %s\n", r.UserName, r.Month)
	cli.Rule(w, 60)
	if len(r.Tasks) == 0 {
		fmt.Fprintln(w, "No completed tasks this month.")
	}
	for _, t := range r.Tasks {
		fmt.Fprintf(w, "  %-30s base %3d  penalty %4d  final %3d", t.TaskTitle, t.BaseScore, t.DelayPenalty, t.FinalScore)
		if t.DaysLate > 0 {
			fmt.Fprintf(w, "  (%d days late)", t.DaysLate)
		}
		fmt.Fprintln(w)
	}
	cli.Rule(w, 60)
	fmt.Fprintf(w, "Total: %d / %d\n", r.TotalScore, r.TargetScore)
}

func init() {
	scoreCmd.Flags().StringVar(&month, "month", "", "month (YYYY-MM), current month when empty")
	scoreCmd.Flags().StringVar(&pdfPath, "pdf", "", "also write the report to this PDF file")
	dashboardCmd.Flags().StringVar(&month, "month", "", "month (YYYY-MM), current month when empty")
	dashboardCmd.Flags().BoolVar(&org, "org", false, "cover every developer")

	Cmd.AddCommand(scoreCmd)
	Cmd.AddCommand(dashboardCmd)
}

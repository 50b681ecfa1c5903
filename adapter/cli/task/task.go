package task

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/performance/application/queries"
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Create tasks and move them through claim, work, review and approval.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(claimCmd)
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(submitCmd)
	Cmd.AddCommand(approveCmd)
	Cmd.AddCommand(rejectCmd)
	Cmd.AddCommand(blockCmd)
	Cmd.AddCommand(unblockCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(upcomingCmd)
}

func printTask(w io.Writer, t *queries.TaskDTO) {
	fmt.Fprintf(w, "  ID:          %s\n", t.ID)
	fmt.Fprintf(w, "  Title:       %s\n", t.Title)
	fmt.Fprintf(w, "  Project:     %s\n", t.ProjectID)
	fmt.Fprintf(w, "  Status:      %s\n", statusLabel(t))
	fmt.Fprintf(w, "  Assignee:    %s\n", cli.OrDash(t.AssigneeID))
	fmt.Fprintf(w, "  Points:      %d (%s, base score %d)\n", t.StoryPoints, t.Difficulty, t.BaseScore)
	fmt.Fprintf(w, "  Priority:    %s\n", t.Priority)
	fmt.Fprintf(w, "  Due:         %s\n", t.DueDate)
	if len(t.Tags) > 0 {
		fmt.Fprintf(w, "  Tags:        %s\n", strings.Join(t.Tags, ", "))
	}
	if t.FinalScore != nil {
		fmt.Fprintf(w, "  Final score: %d", *t.FinalScore)
		if t.DaysLate != nil && *t.DaysLate > 0 {
			fmt.Fprintf(w, " (%d days late, %d penalty)", *t.DaysLate, *t.DelayPenalty)
		}
		if t.ScoreOverridden {
			fmt.Fprint(w, " [override]")
		}
		fmt.Fprintln(w)
	}
}

func statusLabel(t *queries.TaskDTO) string {
	if t.BlockedFrom == "" {
		return t.Status
	}
	label := fmt.Sprintf("%s (from %s)", t.Status, t.BlockedFrom)
	if t.BlockReason != "" {
		label += ": " + t.BlockReason
	}
	return label
}

package scoring

import (
	"math"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// Completion is the scored outcome of one completed task.
type Completion struct {
	TaskID      string
	UserID      string
	CompletedAt time.Time
	FinalScore  int
}

// AnyUser scopes MonthlyScore and CountInMonth to every user.
const AnyUser = ""

func (c Completion) counts(userID string, month calendar.Month) bool {
	return (userID == AnyUser || c.UserID == userID) && month.Contains(c.CompletedAt)
}

// MonthlyScore sums the final scores a user earned in the month.
func MonthlyScore(completions []Completion, userID string, month calendar.Month) int {
	total := 0
	for _, c := range completions {
		if c.counts(userID, month) {
			total += c.FinalScore
		}
	}
	return total
}

// CountInMonth returns how many tasks the user completed in the month.
func CountInMonth(completions []Completion, userID string, month calendar.Month) int {
	n := 0
	for _, c := range completions {
		if c.counts(userID, month) {
			n++
		}
	}
	return n
}

// TeamTotalScore sums the monthly scores of every member.
func TeamTotalScore(memberIDs []string, completions []Completion, month calendar.Month) int {
	members := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}

	total := 0
	for _, c := range completions {
		if _, ok := members[c.UserID]; ok && month.Contains(c.CompletedAt) {
			total += c.FinalScore
		}
	}
	return total
}

// Productivity returns the score as a rounded percentage of the target.
func Productivity(score, target int) (int, error) {
	if target <= 0 {
		return 0, domain.InvalidTargetf("monthly target must be positive, got %d", target)
	}
	return int(math.Round(float64(score) * 100 / float64(target))), nil
}

// ProjectProgress returns completed tasks as a rounded percentage of all tasks.
func ProjectProgress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

// AverageScore returns the mean score per completed task to one decimal place.
func AverageScore(score, completed int) float64 {
	if completed <= 0 {
		return 0
	}
	return math.Round(float64(score)*10/float64(completed)) / 10
}

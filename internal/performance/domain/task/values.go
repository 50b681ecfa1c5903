package task

import (
	"slices"
	"strings"

	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

// Status represents the task lifecycle state.
type Status int

const (
	StatusAvailable Status = iota
	StatusTodo
	StatusInProgress
	StatusReview
	StatusCompleted
	StatusBlocked
)

var statusNames = map[Status]string{
	StatusAvailable:  "available",
	StatusTodo:       "todo",
	StatusInProgress: "in_progress",
	StatusReview:     "review",
	StatusCompleted:  "completed",
	StatusBlocked:    "blocked",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStatus converts a stored or user-supplied status name.
// The hyphenated "in-progress" is accepted as well.
func ParseStatus(s string) (Status, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return StatusAvailable, domain.InvalidSpecf("unknown task status %q", s)
}

// IsTerminal reports whether no further transition may leave the status.
func (s Status) IsTerminal() bool { return s == StatusCompleted }

// StoryPoints is an estimate from the allowed Fibonacci-like set.
type StoryPoints int

// AllowedStoryPoints lists every accepted estimate in ascending order.
var AllowedStoryPoints = []StoryPoints{1, 2, 3, 5, 8, 13}

// NewStoryPoints validates an estimate.
func NewStoryPoints(v int) (StoryPoints, error) {
	sp := StoryPoints(v)
	if !slices.Contains(AllowedStoryPoints, sp) {
		return 0, domain.InvalidSpecf("story points must be one of 1, 2, 3, 5, 8, 13, got %d", v)
	}
	return sp, nil
}

// BaseScore is the point value of a task worth sp story points.
func (sp StoryPoints) BaseScore() int { return int(sp) * 2 }

// Difficulty is the PM's estimate of how hard a task is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty accepts any casing of Easy, Medium or Hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	default:
		return "", domain.InvalidSpecf("difficulty must be Easy, Medium or Hard, got %q", s)
	}
}

// DefaultPriority derives a priority when the creator supplies none.
func (d Difficulty) DefaultPriority() Priority {
	switch d {
	case DifficultyHard:
		return PriorityHigh
	case DifficultyMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Priority orders work within a project.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a priority name. Empty input yields an empty priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	default:
		return "", domain.InvalidSpecf("priority must be low, medium, high or urgent, got %q", s)
	}
}

// NormalizeTags trims, drops empties, deduplicates and sorts.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}

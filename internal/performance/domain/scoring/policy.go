// Package scoring computes final task scores and folds completed tasks
// into monthly, team and project aggregates.
package scoring

import (
	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
)

const (
	DefaultPenaltyPerDay       = 1
	DefaultMinimumFloorPercent = 20
)

// Policy holds the tunable parameters of the deadline penalty rule.
type Policy struct {
	PenaltyPerDay       int
	MinimumFloorPercent int
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		PenaltyPerDay:       DefaultPenaltyPerDay,
		MinimumFloorPercent: DefaultMinimumFloorPercent,
	}
}

// NewPolicy validates and returns a policy.
func NewPolicy(penaltyPerDay, minimumFloorPercent int) (Policy, error) {
	p := Policy{PenaltyPerDay: penaltyPerDay, MinimumFloorPercent: minimumFloorPercent}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the penalty is at least one point per day and the floor is a percentage.
func (p Policy) Validate() error {
	if p.PenaltyPerDay < 1 {
		return domain.InvalidSpecf("penalty per day must be at least 1, got %d", p.PenaltyPerDay)
	}
	if p.MinimumFloorPercent < 0 || p.MinimumFloorPercent > 100 {
		return domain.InvalidSpecf("minimum floor percent must be within 0..100, got %d", p.MinimumFloorPercent)
	}
	return nil
}

// Override carries the optional values a PM may supply at approval.
// Score replaces the computed raw score; PenaltyPerDay replaces the policy rate for one task.
type Override struct {
	Score         *int
	PenaltyPerDay *int
}

// Validate rejects a negative score and a penalty rate below one point per day.
func (o Override) Validate() error {
	if o.Score != nil && *o.Score < 0 {
		return domain.InvalidSpecf("override score must not be negative, got %d", *o.Score)
	}
	if o.PenaltyPerDay != nil && *o.PenaltyPerDay < 1 {
		return domain.InvalidSpecf("override penalty per day must be at least 1, got %d", *o.PenaltyPerDay)
	}
	return nil
}

// IsZero reports whether no override value was supplied.
func (o Override) IsZero() bool {
	return o.Score == nil && o.PenaltyPerDay == nil
}

// Result is the score stamped on a task at completion.
type Result struct {
	BaseScore    int
	DaysLate     int
	DelayPenalty int
	FinalScore   int
	Overridden   bool
}

// DaysLate returns the whole days the completion day falls after the due date, never negative.
func DaysLate(due, completed calendar.Date) int {
	days := due.DaysUntil(completed)
	if days < 0 {
		return 0
	}
	return days
}

// Floor returns the minimum score for a base score, rounded up.
func (p Policy) Floor(baseScore int) int {
	if baseScore <= 0 || p.MinimumFloorPercent <= 0 {
		return 0
	}
	return (baseScore*p.MinimumFloorPercent + 99) / 100
}

// Compute applies the penalty rule to a task completed on the given day.
func (p Policy) Compute(baseScore int, due, completed calendar.Date, override Override) (Result, error) {
	if err := override.Validate(); err != nil {
		return Result{}, err
	}

	rate := p.PenaltyPerDay
	if override.PenaltyPerDay != nil {
		rate = *override.PenaltyPerDay
	}

	daysLate := DaysLate(due, completed)
	penalty := 0
	if daysLate > 0 {
		penalty = -(daysLate * rate)
	}

	raw := baseScore + penalty
	if override.Score != nil {
		raw = *override.Score
	}

	final := raw
	if floor := p.Floor(baseScore); final < floor {
		final = floor
	}

	return Result{
		BaseScore:    baseScore,
		DaysLate:     daysLate,
		DelayPenalty: penalty,
		FinalScore:   final,
		Overridden:   !override.IsZero(),
	}, nil
}

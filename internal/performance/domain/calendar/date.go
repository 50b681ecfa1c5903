// Package calendar holds whole-day UTC dates and calendar months.
package calendar

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Date is a calendar day at UTC midnight.
type Date struct {
	t time.Time
}

// NewDate builds a date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool    { return d.t.IsZero() }

// DaysUntil returns the whole days from d to other; negative when other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// Month is a calendar month, used to bucket completions for scoring.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the UTC month containing t.
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return Month{Year: u.Year(), Month: u.Month()}
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Contains reports whether the instant falls inside the month, in UTC.
func (m Month) Contains(t time.Time) bool {
	u := t.UTC()
	return u.Year() == m.Year && u.Month() == m.Month
}

// Start returns the first instant of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

package application

import "time"

// Clock supplies the current instant to command handlers so lifecycle
// timestamps and score calculations can be pinned in tests.
type Clock func() time.Time

// SystemClock returns the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Now returns the clock reading, falling back to the system clock when nil.
func (c Clock) Now() time.Time {
	if c == nil {
		return SystemClock()
	}
	return c().UTC()
}

// Package persistence stores the performance aggregates through
// database.Connection, so one set of statements serves SQLite and PostgreSQL.
package persistence

import (
	"database/sql"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
)

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func formatOptionalTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseOptionalTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d calendar.Date) sql.NullString {
	return nullString(d.String())
}

func parseOptionalDate(s sql.NullString) (calendar.Date, error) {
	if !s.Valid || s.String == "" {
		return calendar.Date{}, nil
	}
	return calendar.ParseDate(s.String)
}

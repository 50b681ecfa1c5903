package database

import (
	"strconv"
	"strings"
)

// Driver names a storage backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string { return string(d) }

// IsValid reports whether d is a supported backend.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// DetectDriver picks a backend from a connection string. An empty string
// selects SQLite so the board works without any setup; anything that is
// neither a postgres URL nor SQLite-looking is treated as PostgreSQL.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return DriverSQLite
	}
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(url, ext) {
			return DriverSQLite
		}
	}
	return DriverPostgres
}

// Rebind rewrites "?" placeholders into the "$n" form PostgreSQL expects.
// Question marks inside single-quoted literals are left untouched.
func Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	quoted := false
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
			b.WriteRune(r)
		case r == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

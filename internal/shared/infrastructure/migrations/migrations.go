package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationFS embed.FS

// Run applies every .up.sql file for the connection's driver, in file-name
// order. Statements use IF NOT EXISTS, so re-running is a no-op.
func Run(ctx context.Context, conn database.Connection) error {
	files, err := upFiles(conn.Driver())
	if err != nil {
		return err
	}

	for _, file := range files {
		migration, err := migrationFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		for _, stmt := range statements(string(migration)) {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", file, err)
			}
		}
	}

	return nil
}

func upFiles(driver database.Driver) ([]string, error) {
	dir := driver.String()
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %s: %w", driver, err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, dir+"/"+entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// statements splits a migration file on semicolons. Migration files hold
// plain DDL only, never semicolons inside literals.
func statements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

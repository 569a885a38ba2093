package testhelpers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ApplyMigrations runs every .up.sql file from the given directory against
// the test database, in filename order.
func ApplyMigrations(db *sql.DB, migrationsPath string) error {
	upFiles, err := filepath.Glob(filepath.Join(migrationsPath, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("scan migrations dir: %w", err)
	}
	if len(upFiles) == 0 {
		return fmt.Errorf("no migrations found in %s", migrationsPath)
	}
	sort.Strings(upFiles)

	for _, path := range upFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
		}
	}

	return nil
}

package database

import (
	"database/sql"
	"fmt"
	"os"
)

// Migrate applies the checked-in schema. Statements are written to be
// idempotent (CREATE TABLE IF NOT EXISTS) so this runs on every boot.
func Migrate(db *sql.DB) error {
	return MigrateFrom(db, "docs/schema.sql")
}

func MigrateFrom(db *sql.DB, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

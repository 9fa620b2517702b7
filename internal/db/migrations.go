package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: expired sessions and verification codes accumulate since
	// expiry is enforced at read time; clear out long-dead rows on startup.
	`DELETE FROM sessions WHERE expires_at < DATETIME('now', '-30 days')`,
	`DELETE FROM email_verifications WHERE expires_at < DATETIME('now', '-30 days')`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}

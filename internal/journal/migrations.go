package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

// migration represents a database schema migration.
type migration struct {
	version int
	name    string
	up      string
}

// migrations contains all database migrations in order.
// Add new migrations to the end of this slice.
var migrations = []migration{
	{
		version: 1,
		name:    "create_events_table",
		up: `
CREATE TABLE events (
    id          TEXT PRIMARY KEY,
    action      TEXT NOT NULL,
    name        TEXT NOT NULL,
    source      TEXT,
    python      TEXT,
    root        TEXT NOT NULL,
    created_at  TEXT NOT NULL
);

CREATE INDEX idx_events_name ON events(name);
CREATE INDEX idx_events_created ON events(created_at);
`,
	},
}

// migrate runs all pending migrations.
func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion, err := db.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}

	return nil
}

// runMigration runs a single migration within a transaction.
func (db *DB) runMigration(m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.up); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.version, m.name,
	)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

// SchemaVersion returns the current schema version, or 0 if no migrations have been applied.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

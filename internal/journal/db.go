// Package journal keeps an append-only history of environment operations in a
// sqlite database. The registry never reads it back; environment directories
// remain the only source of truth.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the journal database.
type DB struct {
	*sql.DB
	path string
}

// DefaultPath returns the default journal path (~/.local/share/uvn/journal.db).
func DefaultPath() (string, error) {
	// Follow XDG Base Directory spec: use $XDG_DATA_HOME or ~/.local/share
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "uvn", "journal.db"), nil
}

// Open opens or creates the journal database at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
// If path is empty, uses DefaultPath().
func Open(path string) (*DB, error) {
	var err error
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory %s: %w", dir, err)
		}
	}

	var dsn string
	if path == ":memory:" {
		// Each in-memory journal gets its own name so separate Opens don't share tables.
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	} else {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// A single connection keeps shared-cache memory databases alive and
	// serializes writers from one process.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Path returns the database file path, or ":memory:" for in-memory databases.
func (db *DB) Path() string {
	return db.path
}

package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is the kind of operation an event records.
type Action string

const (
	ActionCreate Action = "create"
	ActionRemove Action = "remove"
	ActionFork   Action = "fork"
)

// ValidActions contains all valid action values.
var ValidActions = []Action{
	ActionCreate,
	ActionRemove,
	ActionFork,
}

// IsValidAction returns true if a is a valid action.
func IsValidAction(a Action) bool {
	for _, valid := range ValidActions {
		if a == valid {
			return true
		}
	}
	return false
}

// Event is a single journal entry.
type Event struct {
	ID        string    // UUID, assigned by Record when empty
	Action    Action    // What happened
	Name      string    // Environment name
	Source    string    // Source environment for forks (may be empty)
	Python    string    // Interpreter request or version (may be empty)
	Root      string    // Root directory the environment lives in
	CreatedAt time.Time // Assigned by Record when zero
}

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrInvalidAction is returned when an event has an unknown action.
var ErrInvalidAction = errors.New("invalid action")

// Record appends an event to the journal.
func (db *DB) Record(ctx context.Context, ev *Event) error {
	if !IsValidAction(ev.Action) {
		return fmt.Errorf("%w: %s", ErrInvalidAction, ev.Action)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO events (id, action, name, source, python, root, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		string(ev.Action),
		ev.Name,
		nullString(ev.Source),
		nullString(ev.Python),
		ev.Root,
		ev.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// ListOptions specifies filters for listing events.
type ListOptions struct {
	Name  string // Filter by environment name (matches Name or Source)
	Limit int    // Maximum number of events, 0 for no limit
}

// List returns events newest first.
func (db *DB) List(ctx context.Context, opts ListOptions) ([]*Event, error) {
	query := `
		SELECT id, action, name, source, python, root, created_at
		FROM events
	`

	var args []any
	if opts.Name != "" {
		query += " WHERE name = ? OR source = ?"
		args = append(args, opts.Name, opts.Name)
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// scanner is an interface for sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*Event, error) {
	var ev Event
	var source, python sql.NullString
	var createdAt string

	err := s.Scan(
		&ev.ID,
		&ev.Action,
		&ev.Name,
		&source,
		&python,
		&ev.Root,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	ev.Source = source.String
	ev.Python = python.String

	ev.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &ev, nil
}

// nullString converts an empty string to sql.NullString for optional fields.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

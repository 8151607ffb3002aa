// Package journal keeps a local SQLite log of every change prsconf sends to
// the backend, successful or not, so an operator can see what was done
// from this terminal.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Actions recorded in the journal.
const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionLink      = "link"
	ActionWriteData = "write-data"
)

// Outcomes of an action.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Entry is one journal record.
type Entry struct {
	ID         int64     `json:"id"`
	At         time.Time `json:"at"`
	Action     string    `json:"action"`
	Collection string    `json:"collection"`
	EntityID   string    `json:"entity_id"`
	Payload    string    `json:"payload,omitempty"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
}

// Journal is an open journal database.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One writer; the TUI records from command goroutines.
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at_ms INTEGER NOT NULL,
		action TEXT NOT NULL,
		collection TEXT NOT NULL,
		entity_id TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_changes_entity ON changes(entity_id);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends an entry. A zero At is set to now; ID is filled in.
func (j *Journal) Record(ctx context.Context, e *Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeOK
	}
	result, err := j.db.ExecContext(ctx, `
		INSERT INTO changes (at_ms, action, collection, entity_id, payload, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.At.UnixMilli(), e.Action, e.Collection, e.EntityID, e.Payload, e.Outcome, e.Error)
	if err != nil {
		return fmt.Errorf("record %s %s: %w", e.Action, e.EntityID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return j.query(ctx, `
		SELECT id, at_ms, action, collection, entity_id, payload, outcome, error
		FROM changes
		ORDER BY id DESC
		LIMIT ?
	`, limit)
}

// ForEntity returns every entry for one entity, newest first.
func (j *Journal) ForEntity(ctx context.Context, entityID string) ([]Entry, error) {
	return j.query(ctx, `
		SELECT id, at_ms, action, collection, entity_id, payload, outcome, error
		FROM changes
		WHERE entity_id = ?
		ORDER BY id DESC
	`, entityID)
}

func (j *Journal) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var atMs int64
		if err := rows.Scan(&e.ID, &atMs, &e.Action, &e.Collection, &e.EntityID, &e.Payload, &e.Outcome, &e.Error); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(atMs)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS cem_transitions (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id        TEXT NOT NULL,
	cycle             INTEGER NOT NULL,
	experimental_mode INTEGER NOT NULL,
	status            INTEGER NOT NULL,
	rule              TEXT,
	path              TEXT NOT NULL,
	inputs_json       TEXT,
	created_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS cem_transitions_session ON cem_transitions(session_id, cycle);
`

// EnsureSchema creates the transition table if it does not exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate transitions: %w", err)
	}
	return nil
}

// #endregion schema

// #region log-transition
// LogTransition writes a transition entry to the cem_transitions table.
func LogTransition(ctx context.Context, db *sql.DB, entry TransitionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO cem_transitions (session_id, cycle, experimental_mode, status, rule, path, inputs_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		int64(entry.Cycle),
		boolToInt(entry.ExperimentalMode),
		entry.Status,
		nullIfEmpty(entry.Rule),
		entry.Path,
		nullIfEmpty(entry.InputsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log transition: %w", err)
	}
	return nil
}

// #endregion log-transition

// #region list-transitions
// ListTransitions returns up to limit transitions, newest first. An empty
// sessionID lists every session.
func ListTransitions(ctx context.Context, db *sql.DB, sessionID string, limit int) ([]TransitionEntry, error) {
	query := `SELECT session_id, cycle, experimental_mode, status, rule, path, inputs_json, created_at
		FROM cem_transitions`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []TransitionEntry
	for rows.Next() {
		var e TransitionEntry
		var cycle int64
		var mode int
		var rule, inputs sql.NullString
		var created string
		if err := rows.Scan(&e.SessionID, &cycle, &mode, &e.Status, &rule, &e.Path, &inputs, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Cycle = uint64(cycle)
		e.ExperimentalMode = mode != 0
		e.Rule = rule.String
		e.InputsJSON = inputs.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-transitions

// #region recorder
// Recorder writes transitions for one session.
type Recorder struct {
	db        *sql.DB
	sessionID string
}

// NewRecorder migrates db and returns a recorder stamping rows with sessionID.
func NewRecorder(db *sql.DB, sessionID string) (*Recorder, error) {
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	return &Recorder{db: db, sessionID: sessionID}, nil
}

// SessionID returns the id stamped on every row.
func (r *Recorder) SessionID() string { return r.sessionID }

// Record writes entry under the recorder's session.
func (r *Recorder) Record(ctx context.Context, entry TransitionEntry) error {
	entry.SessionID = r.sessionID
	return LogTransition(ctx, r.db, entry)
}

// #endregion recorder

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers

package flow

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/seekwell/seekwell/errors"
)

// SQLiteSaver persists checkpoints in a SQLite database.
// One row per thread id; Save upserts, preserving the original created_at.
type SQLiteSaver struct {
	db *sql.DB
}

// NewSQLiteSaver creates a saver over an open database handle
func NewSQLiteSaver(db *sql.DB) *SQLiteSaver {
	return &SQLiteSaver{db: db}
}

// EnsureSchema creates the checkpoint table if it does not exist
func (s *SQLiteSaver) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS flow_checkpoints (
			thread_id  TEXT PRIMARY KEY,
			cursor     TEXT NOT NULL,
			status     TEXT NOT NULL,
			prompt     TEXT NOT NULL DEFAULT '',
			state      TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_flow_checkpoints_status
			ON flow_checkpoints(status);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create checkpoint schema")
	}
	return nil
}

// Save upserts the checkpoint for its thread id
func (s *SQLiteSaver) Save(ctx context.Context, cp *Checkpoint) error {
	if !IsValidStatus(string(cp.Status)) {
		return errors.Newf("invalid run status: %s", cp.Status)
	}

	query := `
		INSERT INTO flow_checkpoints (
			thread_id, cursor, status, prompt, state, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			cursor = excluded.cursor,
			status = excluded.status,
			prompt = excluded.prompt,
			state = excluded.state,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		cp.ThreadID,
		cp.Cursor,
		cp.Status,
		cp.Prompt,
		string(cp.State),
		cp.CreatedAt,
		cp.UpdatedAt,
	)
	if err != nil {
		err = errors.Wrap(err, "failed to save checkpoint")
		err = errors.WithDetailf(err, "Thread ID: %s", cp.ThreadID)
		err = errors.WithDetailf(err, "Cursor: %s", cp.Cursor)
		return err
	}
	return nil
}

// Load retrieves the checkpoint for a thread id.
// Returns errors.ErrNoSuchThread when no row exists.
func (s *SQLiteSaver) Load(ctx context.Context, threadID string) (*Checkpoint, error) {
	query := `
		SELECT thread_id, cursor, status, prompt, state, created_at, updated_at
		FROM flow_checkpoints
		WHERE thread_id = ?
	`

	var cp Checkpoint
	var state string
	err := s.db.QueryRowContext(ctx, query, threadID).Scan(
		&cp.ThreadID,
		&cp.Cursor,
		&cp.Status,
		&cp.Prompt,
		&state,
		&cp.CreatedAt,
		&cp.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNoSuchThread, "thread %s", threadID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load checkpoint")
	}

	cp.State = json.RawMessage(state)
	return &cp, nil
}

// List returns checkpoints ordered by most recent update
func (s *SQLiteSaver) List(ctx context.Context, limit int) ([]*Checkpoint, error) {
	query := `
		SELECT thread_id, cursor, status, prompt, state, created_at, updated_at
		FROM flow_checkpoints
		ORDER BY updated_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list checkpoints")
	}
	defer rows.Close()

	var checkpoints []*Checkpoint
	for rows.Next() {
		var cp Checkpoint
		var state string
		if err := rows.Scan(
			&cp.ThreadID,
			&cp.Cursor,
			&cp.Status,
			&cp.Prompt,
			&state,
			&cp.CreatedAt,
			&cp.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan checkpoint")
		}
		cp.State = json.RawMessage(state)
		checkpoints = append(checkpoints, &cp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating checkpoints")
	}
	return checkpoints, nil
}

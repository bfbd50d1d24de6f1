package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/harvest/internal/apperr"
	"github.com/starford/harvest/internal/catalog"
)

// Session is one client's browsing state held between requests.
type Session struct {
	ID        string        `json:"id"`
	State     catalog.State `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Create stores a new session holding state.
func (db *DB) Create(ctx context.Context, state catalog.State) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tagsJSON, err := json.Marshal(state.Tags)
	if err != nil {
		return nil, fmt.Errorf("sessions: encode tags: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, query, tags, view_mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, state.Query, string(tagsJSON), string(state.Mode), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("sessions: insert: %w", err)
	}
	return s, nil
}

// Get returns the session with the given id, or apperr.ErrNotFound.
func (db *DB) Get(ctx context.Context, id string) (*Session, error) {
	return get(ctx, db.conn, id)
}

// Mutate loads a session, applies fn to its state and stores the result, all
// in one transaction. When fn fails nothing is written.
func (db *DB) Mutate(ctx context.Context, id string, fn func(catalog.State) (catalog.State, error)) (*Session, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sessions: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	s, err := get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(s.State)
	if err != nil {
		return nil, err
	}

	tagsJSON, err := json.Marshal(next.Tags)
	if err != nil {
		return nil, fmt.Errorf("sessions: encode tags: %w", err)
	}
	s.State = next
	s.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions SET query = ?, tags = ?, view_mode = ?, updated_at = ?
		WHERE id = ?
	`, next.Query, string(tagsJSON), string(next.Mode), s.UpdatedAt, id); err != nil {
		return nil, fmt.Errorf("sessions: update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sessions: commit: %w", err)
	}
	return s, nil
}

// Delete removes a session. Ending an unknown session yields apperr.ErrNotFound.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sessions: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sessions: delete: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Sweep deletes sessions not updated since idleSince and returns how many were removed.
func (db *DB) Sweep(ctx context.Context, idleSince time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, idleSince.UTC())
	if err != nil {
		return 0, fmt.Errorf("sessions: sweep: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of live sessions.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sessions: count: %w", err)
	}
	return n, nil
}

func get(ctx context.Context, q queryer, id string) (*Session, error) {
	var (
		s        Session
		tagsJSON string
		mode     string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, query, tags, view_mode, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.State.Query, &tagsJSON, &mode, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sessions: get: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &s.State.Tags); err != nil {
		return nil, fmt.Errorf("sessions: decode tags: %w", err)
	}
	s.State.Mode, err = catalog.ParseViewMode(mode)
	if err != nil {
		return nil, fmt.Errorf("sessions: stored state: %w", err)
	}
	return &s, nil
}

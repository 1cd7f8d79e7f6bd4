package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"carboncredit/pkg/core/assessment"
)

// SessionRepo is a Postgres-backed assessment.Store. Mutate serializes
// concurrent submissions against the same session with a row lock.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS assessment_sessions (
//	  session_id TEXT PRIMARY KEY,
//	  session_json JSONB NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type SessionRepo struct{}

// NewSessionRepo creates a new repository instance.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{}
}

var _ assessment.Store = (*SessionRepo)(nil)

// Create inserts a new session row, failing with ErrDuplicateSession when the
// id is already live.
func (r *SessionRepo) Create(ctx context.Context, sess *assessment.Session) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	query := `
		INSERT INTO assessment_sessions (session_id, session_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO NOTHING;
	`

	tag, err := pool.Exec(ctx, query, sess.SessionID, jsonData, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return assessment.ErrDuplicateSession
	}
	return nil
}

// Get returns a snapshot of the session, or ErrUnknownSession.
func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*assessment.Session, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT session_json FROM assessment_sessions WHERE session_id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, sessionID).Scan(&jsonData)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, assessment.ErrUnknownSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess assessment.Session
	if err := json.Unmarshal(jsonData, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Mutate applies fn to the session under a row lock and persists the result.
func (r *SessionRepo) Mutate(ctx context.Context, sessionID string, fn func(*assessment.Session) error) (*assessment.Session, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT session_json FROM assessment_sessions WHERE session_id = $1 FOR UPDATE`

	var jsonData []byte
	err = tx.QueryRow(ctx, query, sessionID).Scan(&jsonData)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, assessment.ErrUnknownSession
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}

	var sess assessment.Session
	if err := json.Unmarshal(jsonData, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if err := fn(&sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now()

	updated, err := json.Marshal(&sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	updateQuery := `
		UPDATE assessment_sessions
		SET session_json = $2, updated_at = $3
		WHERE session_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, sessionID, updated, sess.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit session update: %w", err)
	}
	return &sess, nil
}

// Delete removes a session row. Deleting an unknown id is not an error.
func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	_, err := pool.Exec(ctx, `DELETE FROM assessment_sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

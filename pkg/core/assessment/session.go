package assessment

import (
	"context"
	"errors"
	"time"

	"carboncredit/pkg/core/eligibility"
)

var (
	// ErrUnknownSession marks a session id that is not live.
	ErrUnknownSession = errors.New("unknown session")
	// ErrDuplicateSession marks a caller-supplied id colliding with a live
	// session. Without this check a restart of the questionnaire would
	// silently wipe the earlier answer state.
	ErrDuplicateSession = errors.New("session already exists")
)

// Session is one questionnaire walk-through. Cursor indexes into the catalog;
// the session is complete exactly when the cursor reaches the catalog length,
// at which point Result is set.
type Session struct {
	SessionID string                 `json:"session_id"`
	Cursor    int                    `json:"current_question_index"`
	Answers   map[string]interface{} `json:"answers"`
	Complete  bool                   `json:"is_complete"`
	Result    *eligibility.Verdict   `json:"eligibility_result,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Store keeps live sessions keyed by id. Mutate must serialize concurrent
// calls against the same session id so that exactly one answer is consumed
// per submission.
type Store interface {
	// Create inserts a new session, failing with ErrDuplicateSession when the
	// id is already live.
	Create(ctx context.Context, sess *Session) error
	// Get returns a snapshot of the session, or ErrUnknownSession.
	Get(ctx context.Context, sessionID string) (*Session, error)
	// Mutate applies fn to the session under the store's per-session lock and
	// persists the result. fn sees the current state; returning an error
	// aborts the write.
	Mutate(ctx context.Context, sessionID string, fn func(*Session) error) (*Session, error)
	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, sessionID string) error
}

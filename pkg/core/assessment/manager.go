package assessment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carboncredit/pkg/core/catalog"
	"carboncredit/pkg/core/eligibility"
)

// Manager owns session progression through the question catalog. It is the
// only writer of session state; the catalog is shared and immutable.
type Manager struct {
	catalog  *catalog.Catalog
	store    Store
	evaluate func(map[string]interface{}) eligibility.Verdict
}

// NewManager wires a manager over a catalog and session store.
func NewManager(cat *catalog.Catalog, store Store) *Manager {
	return &Manager{
		catalog:  cat,
		store:    store,
		evaluate: eligibility.Evaluate,
	}
}

// SubmitResult is what one answer submission yields: either the next question
// or, on the final answer, the eligibility verdict.
type SubmitResult struct {
	IsComplete   bool                 `json:"is_complete"`
	NextQuestion *catalog.Question    `json:"next_question,omitempty"`
	Verdict      *eligibility.Verdict `json:"eligibility_result,omitempty"`
	Progress     float64              `json:"progress"`
}

// ProgressSnapshot is the read-only progress view of a session.
type ProgressSnapshot struct {
	SessionID            string  `json:"session_id"`
	CurrentQuestionIndex int     `json:"current_question_index"`
	TotalQuestions       int     `json:"total_questions"`
	Progress             float64 `json:"progress"`
	IsComplete           bool    `json:"is_complete"`
	AnswersProvided      int     `json:"answers_provided"`
}

// Start creates a new session. When sessionID is empty a random one is
// generated; a caller-supplied id that is already live fails with
// ErrDuplicateSession.
func (m *Manager) Start(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	now := time.Now()
	sess := &Session{
		SessionID: sessionID,
		Cursor:    0,
		Answers:   make(map[string]interface{}),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// CurrentQuestion returns the catalog entry at the session cursor, or nil for
// a completed session.
func (m *Manager) CurrentQuestion(ctx context.Context, sessionID string) (*catalog.Question, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.catalog.At(sess.Cursor), nil
}

// SubmitAnswer records value under questionID and advances the cursor by one.
// Progression is strictly positional: the submitted questionID is stored
// verbatim but never used to look up the cursor, so an out-of-order id is
// accepted silently. When the advance exhausts the catalog the session
// completes and the eligibility verdict is computed over the full answer set.
// Submitting to an already-complete session returns the stored verdict
// unchanged; COMPLETE is terminal.
func (m *Manager) SubmitAnswer(ctx context.Context, sessionID, questionID string, value interface{}) (*SubmitResult, error) {
	var result SubmitResult

	_, err := m.store.Mutate(ctx, sessionID, func(sess *Session) error {
		if sess.Complete {
			result = SubmitResult{IsComplete: true, Verdict: sess.Result, Progress: 1.0}
			return nil
		}

		sess.Answers[questionID] = value
		sess.Cursor++

		if sess.Cursor >= m.catalog.Len() {
			sess.Cursor = m.catalog.Len()
			sess.Complete = true
			verdict := m.evaluate(sess.Answers)
			sess.Result = &verdict
			result = SubmitResult{IsComplete: true, Verdict: sess.Result, Progress: 1.0}
			return nil
		}

		result = SubmitResult{
			IsComplete:   false,
			NextQuestion: m.catalog.At(sess.Cursor),
			Progress:     float64(sess.Cursor) / float64(m.catalog.Len()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Progress returns the progress snapshot for a session.
func (m *Manager) Progress(ctx context.Context, sessionID string) (*ProgressSnapshot, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &ProgressSnapshot{
		SessionID:            sess.SessionID,
		CurrentQuestionIndex: sess.Cursor,
		TotalQuestions:       m.catalog.Len(),
		Progress:             float64(sess.Cursor) / float64(m.catalog.Len()),
		IsComplete:           sess.Complete,
		AnswersProvided:      len(sess.Answers),
	}, nil
}

// Session returns a snapshot of the full session state.
func (m *Manager) Session(ctx context.Context, sessionID string) (*Session, error) {
	return m.store.Get(ctx, sessionID)
}

// Catalog exposes the question catalog the manager walks.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

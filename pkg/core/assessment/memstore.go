package assessment

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is the single-process session store: a shared map with one
// mutex per session entry, plus a janitor that evicts sessions idle past the
// TTL so abandoned questionnaires do not accumulate for the life of the
// process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memEntry

	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

type memEntry struct {
	mu       sync.Mutex
	sess     *Session
	lastSeen time.Time
}

const DefaultSessionTTL = 24 * time.Hour

// NewMemoryStore creates a store evicting sessions untouched for ttl. A zero
// ttl falls back to DefaultSessionTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &MemoryStore{
		sessions: make(map[string]*memEntry),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) Create(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, live := s.sessions[sess.SessionID]; live {
		return fmt.Errorf("%w: %s", ErrDuplicateSession, sess.SessionID)
	}
	cp := cloneSession(sess)
	s.sessions[sess.SessionID] = &memEntry{sess: cp, lastSeen: time.Now()}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastSeen = time.Now()
	return cloneSession(entry.sess), nil
}

func (s *MemoryStore) Mutate(ctx context.Context, sessionID string, fn func(*Session) error) (*Session, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	// The per-entry lock serializes concurrent submissions on one session.
	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := cloneSession(entry.sess)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now()
	entry.sess = working
	entry.lastSeen = time.Now()
	return cloneSession(working), nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Close stops the janitor. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) entry(sessionID string) (*memEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	return entry, nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(s.ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.evictExpired(now)
		}
	}
}

func (s *MemoryStore) evictExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.sessions, id)
			fmt.Printf("[ASSESS] Evicted idle session %s\n", id)
		}
	}
}

func cloneSession(sess *Session) *Session {
	cp := *sess
	cp.Answers = make(map[string]interface{}, len(sess.Answers))
	for k, v := range sess.Answers {
		cp.Answers[k] = v
	}
	if sess.Result != nil {
		res := *sess.Result
		cp.Result = &res
	}
	return &cp
}

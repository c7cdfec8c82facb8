package memory

import (
	"context"
	"sync"
	"time"

	"novara/internal/model"
	"novara/internal/repository"
)

// SessionStore keeps sessions in a map. Expired entries are dropped lazily on
// read and by Sweep.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]model.Session)}
}

var _ repository.SessionRepository = (*SessionStore)(nil)

func (s *SessionStore) Save(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, model.ErrSessionNotFound
	}
	if session.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, model.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Sweep removes every expired session and returns how many were dropped.
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

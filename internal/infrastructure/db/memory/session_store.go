// Package memory provides a process-local session store for development and
// tests. Sessions do not survive a restart and are not shared across replicas.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pls-platform/dashboard/internal/core/domain"
)

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session), now: time.Now}
}

func (s *SessionStore) Set(_ context.Context, sid string, session domain.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if session.Expired(s.now()) {
		return fmt.Errorf("store session: %w", domain.ErrSessionExpired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = session
	return nil
}

func (s *SessionStore) Replace(_ context.Context, sid string, session domain.Session) (bool, error) {
	if err := session.Validate(); err != nil {
		return false, fmt.Errorf("replace session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[sid]
	if !ok || current.Expired(s.now()) {
		return false, nil
	}
	s.sessions[sid] = session
	return true, nil
}

func (s *SessionStore) Get(_ context.Context, sid string) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sid]
	if !ok {
		return domain.Session{}, false
	}
	if session.Expired(s.now()) {
		delete(s.sessions, sid)
		return domain.Session{}, false
	}
	return session, true
}

func (s *SessionStore) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

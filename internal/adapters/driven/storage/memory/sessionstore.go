// Package memory provides in-memory implementations of driven port interfaces.
// State lives for the lifetime of the process and is useful for tests and
// one-off runs that should leave no history behind.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
// It hands out the registered session pointers themselves, so a merge is
// visible to every holder immediately and Save only re-registers the session.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionKey]*domain.SearchSession
}

// NewSessionStore creates a new, empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionKey]*domain.SearchSession),
	}
}

// GetOrCreate returns the session for key, registering an empty one if needed.
func (s *SessionStore) GetOrCreate(_ context.Context, key domain.SessionKey) (*domain.SearchSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return session, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine may have registered it between the locks.
	if session, ok := s.sessions[key]; ok {
		return session, nil
	}
	session = domain.NewSearchSession(key)
	s.sessions[key] = session
	return session, nil
}

// Get returns the session for key.
func (s *SessionStore) Get(_ context.Context, key domain.SessionKey) (*domain.SearchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

// Save registers the session under its key.
func (s *SessionStore) Save(_ context.Context, session *domain.SearchSession) error {
	if session == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Key()] = session
	return nil
}

// List returns every session, most recently updated first.
// Ties are ordered by key so the order is stable for a given state.
func (s *SessionStore) List(_ context.Context) ([]*domain.SearchSession, error) {
	s.mu.RLock()
	sessions := make([]*domain.SearchSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()

	sortSessions(sessions)
	return sessions, nil
}

// Len returns the number of registered sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// sortSessions orders sessions by last update, newest first, then by key.
func sortSessions(sessions []*domain.SearchSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		ti, tj := sessions[i].LastUpdated(), sessions[j].LastUpdated()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		ki, kj := sessions[i].Key(), sessions[j].Key()
		if ki.BaseURL != kj.BaseURL {
			return ki.BaseURL < kj.BaseURL
		}
		return ki.SearchText < kj.SearchText
	})
}

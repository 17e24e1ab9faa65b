package session

import (
	"context"
	"sync"

	"time"

	"careergate/pkg/platform/sentinel"
)

// InMemoryStore is the development and test session store.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

func (s *InMemoryStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sess.Token]; exists {
		return sentinel.ErrConflict
	}
	cp := *sess
	s.sessions[sess.Token] = &cp
	return nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *InMemoryStore) Refresh(_ context.Context, token string, refreshedAt, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return sentinel.ErrNotFound
	}
	sess.RefreshedAt = refreshedAt
	sess.ExpiresAt = expiresAt
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, token)
	return nil
}

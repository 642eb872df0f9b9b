package session

import (
	"context"
	"sync"

	"tarabaho-web/internal/domain"
)

// MemoryStore keeps sessions in process. It backs the web server when Redis
// is not configured, and the tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session)}
}

func (s *MemoryStore) Save(_ context.Context, key string, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = *sess
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

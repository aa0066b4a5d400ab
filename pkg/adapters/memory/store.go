// Package memory provides an in-process SessionStore for tests and
// single-binary deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/opencivic/sahayak/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use. TTLs are ignored, sessions live until deleted.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Session),
	}
}

// Initialize is a no-op for the in-memory backend.
func (s *Store) Initialize(ctx context.Context) error {
	return nil
}

// Put persists the session in memory.
func (s *Store) Put(ctx context.Context, sessionID string, sess *domain.Session, _ time.Duration) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := sess.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Get retrieves the session from memory.
func (s *Store) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer
	return sess.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns stored session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadAll returns a snapshot of every stored session.
func (s *Store) LoadAll(ctx context.Context) (map[string]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.Session, len(s.data))
	for id, sess := range s.data {
		out[id] = sess.Clone()
	}
	return out, nil
}

// SaveAll replaces the given sessions in one pass.
func (s *Store) SaveAll(ctx context.Context, sessions map[string]*domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range sessions {
		s.data[id] = sess.Clone()
	}
	return nil
}

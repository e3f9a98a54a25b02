// Package session provides an in-process SessionStore.
package session

import (
	"context"
	"sync"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

// MemoryStore keeps the identity/token pair in memory.
type MemoryStore struct {
	mu       sync.Mutex
	identity *domain.Identity
	token    string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Current returns the stored pair, or nil when empty. A partial pair is
// cleared and reported as empty.
func (s *MemoryStore) Current(_ context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil || s.token == "" {
		s.identity, s.token = nil, ""
		return nil, nil
	}
	return &domain.Session{Identity: *s.identity, Token: s.token}, nil
}

// Set replaces the pair in a single step.
func (s *MemoryStore) Set(_ context.Context, identity domain.Identity, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = &identity
	s.token = token
	return nil
}

// Clear drops the pair. Safe to call on an empty store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity, s.token = nil, ""
	return nil
}

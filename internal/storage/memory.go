package storage

import (
	"sync"

	"github.com/echosoul/echosoul/internal/domain"
)

// Compile-time interface check.
var _ domain.CredentialStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory credential store. Nothing survives a
// restart, so "reload rehydration" never sees a record. Useful in
// tests and for running without touching the filesystem.
type MemoryStore struct {
	mu   sync.RWMutex
	user *domain.UserSession
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save keeps a copy of the record.
func (s *MemoryStore) Save(user *domain.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.user = &u
	return nil
}

// Load returns the record, or domain.ErrNotFound when none is held.
func (s *MemoryStore) Load() (*domain.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, domain.ErrNotFound
	}
	u := *s.user
	return &u, nil
}

// Clear drops the record. Idempotent.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}

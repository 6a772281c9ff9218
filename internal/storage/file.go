// Package storage persists the logged-in user record.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

// Compile-time interface check.
var _ domain.CredentialStore = (*FileStore)(nil)

// FileStore keeps the user record as a single JSON file. The file's
// existence is the logged-in flag: Save writes it, Clear removes it,
// Load with no file returns domain.ErrNotFound.
type FileStore struct {
	path string
	log  *logger.Logger
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Save writes the user record, creating parent directories as needed.
func (s *FileStore) Save(user *domain.UserSession) error {
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal user record: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage: create state dir: %w", err)
		}
	}
	// 0600: the record identifies the account; keep it owner-only.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("storage: write user record: %w", err)
	}
	s.log.Debug("storage: saved user record for %s", user.Email)
	return nil
}

// Load reads the user record. Returns domain.ErrNotFound when absent.
func (s *FileStore) Load() (*domain.UserSession, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storage: read user record: %w", err)
	}
	var user domain.UserSession
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("storage: decode user record: %w", err)
	}
	return &user, nil
}

// Clear removes the user record. Removing an absent record is not an
// error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: clear user record: %w", err)
	}
	s.log.Debug("storage: cleared user record")
	return nil
}

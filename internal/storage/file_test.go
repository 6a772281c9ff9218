package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

func TestFileStoreRoundTrip(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	path := filepath.Join(t.TempDir(), "state", "user.json")
	store := NewFileStore(path, log)

	// Empty store.
	if _, err := store.Load(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	user := &domain.UserSession{
		UID:           "uid-123",
		Email:         "soul@example.com",
		EmailVerified: true,
	}
	if err := store.Save(user); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second store over the same path sees the record — this is the
	// reload-rehydration path.
	loaded, err := NewFileStore(path, log).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.UID != user.UID || loaded.Email != user.Email || !loaded.EmailVerified {
		t.Fatalf("loaded record mismatch: %+v", loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}

	// Clear is idempotent.
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Load(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Save(&domain.UserSession{UID: "u1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.UID != "u1" {
		t.Fatalf("expected uid u1, got %s", loaded.UID)
	}

	// Load hands out copies, not the stored pointer.
	loaded.UID = "mutated"
	again, _ := store.Load()
	if again.UID != "u1" {
		t.Fatal("store record was mutated through a loaded copy")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

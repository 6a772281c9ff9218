package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
	"github.com/echosoul/echosoul/internal/storage"
)

// fakeProvider accepts exactly one credential pair.
type fakeProvider struct {
	signIns int
	signUps int
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*domain.UserSession, error) {
	p.signIns++
	if password != "hunter2" {
		return nil, &domain.AuthError{Code: "INVALID_PASSWORD"}
	}
	return &domain.UserSession{UID: "uid-1", Email: email, EmailVerified: true}, nil
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password string) (*domain.UserSession, error) {
	p.signUps++
	return &domain.UserSession{UID: "uid-new", Email: email}, nil
}

func TestStoreLoginLogoutReload(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	path := filepath.Join(t.TempDir(), "user.json")
	creds := storage.NewFileStore(path, log)
	provider := &fakeProvider{}
	ctx := context.Background()

	store := NewStore(provider, creds, log)
	if store.IsLoggedIn() {
		t.Fatal("fresh store must start logged out")
	}

	user, err := store.Login(ctx, "soul@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !store.IsLoggedIn() || store.Current().UID != user.UID {
		t.Fatal("login did not update state")
	}

	// Simulated reload: a fresh store over the same path rehydrates.
	reloaded := NewStore(&fakeProvider{}, storage.NewFileStore(path, log), log)
	if !reloaded.IsLoggedIn() {
		t.Fatal("reloaded store must rehydrate the persisted record")
	}
	if got := reloaded.Current(); got.Email != "soul@example.com" || !got.EmailVerified {
		t.Fatalf("rehydrated record mismatch: %+v", got)
	}

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.IsLoggedIn() {
		t.Fatal("logout did not clear in-memory state")
	}

	// Simulated reload after logout: record is gone.
	afterLogout := NewStore(&fakeProvider{}, storage.NewFileStore(path, log), log)
	if afterLogout.IsLoggedIn() {
		t.Fatal("logout must clear the persisted record")
	}
}

func TestStoreLoginFailure(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	creds := storage.NewMemoryStore()
	store := NewStore(&fakeProvider{}, creds, log)

	_, err := store.Login(context.Background(), "soul@example.com", "wrong")
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
	if store.IsLoggedIn() {
		t.Fatal("failed login must not log in")
	}
	if _, err := creds.Load(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("failed login must not persist a record")
	}
}

func TestStoreSubscribers(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewStore(&fakeProvider{}, storage.NewMemoryStore(), log)
	ctx := context.Background()

	var events []*domain.UserSession
	store.Subscribe(func(u *domain.UserSession) { events = append(events, u) })

	if _, err := store.Login(ctx, "soul@example.com", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(events))
	}
	if events[0] == nil || events[0].Email != "soul@example.com" {
		t.Fatalf("first notification should carry the user, got %+v", events[0])
	}
	if events[1] != nil {
		t.Fatal("logout notification should carry nil")
	}
}

func TestStoreSignUp(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	provider := &fakeProvider{}
	store := NewStore(provider, storage.NewMemoryStore(), log)

	user, err := store.SignUp(context.Background(), "new@example.com", "pw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.EmailVerified {
		t.Error("fresh accounts are never verified")
	}
	if provider.signUps != 1 || !store.IsLoggedIn() {
		t.Fatal("signup must authenticate and log in")
	}
}

package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

// Store is the process-wide observable auth state. It mirrors the
// identity provider's session, rehydrated from the credential store at
// construction so a restart does not force a re-login.
//
// "Logged in" means exactly "a persisted record exists". The provider
// is never re-checked and tokens are never refreshed; the record is
// trusted indefinitely until Logout. That is a deliberate carry-over,
// not an oversight.
type Store struct {
	provider domain.IdentityProvider
	creds    domain.CredentialStore
	log      *logger.Logger

	mu   sync.RWMutex
	user *domain.UserSession
	subs []func(*domain.UserSession)
}

// NewStore creates the auth store and rehydrates any persisted record.
func NewStore(provider domain.IdentityProvider, creds domain.CredentialStore, log *logger.Logger) *Store {
	s := &Store{provider: provider, creds: creds, log: log}

	user, err := creds.Load()
	switch {
	case err == nil:
		s.user = user
		log.Info("auth: rehydrated session for %s", user.Email)
	case errors.Is(err, domain.ErrNotFound):
		// Logged out; nothing to do.
	default:
		log.Warn("auth: reading persisted session: %v", err)
	}
	return s
}

// IsLoggedIn reports whether a user record is held.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Current returns a copy of the logged-in user, or nil.
func (s *Store) Current() *domain.UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Subscribe registers a state-change observer. Observers receive the
// new user record (nil on logout) after every mutation. Subscribers
// are called synchronously, in registration order.
func (s *Store) Subscribe(fn func(*domain.UserSession)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Login authenticates and persists the resulting record.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.UserSession, error) {
	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return user, s.adopt(user)
}

// SignUp registers a new account and persists the resulting record.
func (s *Store) SignUp(ctx context.Context, email, password string) (*domain.UserSession, error) {
	user, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return user, s.adopt(user)
}

// Logout clears the persisted record and the in-memory state. The
// provider keeps no server-side session to revoke.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.creds.Clear(); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = nil
	subs := append([]func(*domain.UserSession){}, s.subs...)
	s.mu.Unlock()

	s.log.Info("auth: logged out")
	for _, fn := range subs {
		fn(nil)
	}
	return nil
}

func (s *Store) adopt(user *domain.UserSession) error {
	if err := s.creds.Save(user); err != nil {
		return err
	}
	s.mu.Lock()
	u := *user
	s.user = &u
	subs := append([]func(*domain.UserSession){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
	return nil
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	// ErrNotFound — a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNetwork — a request was sent but no response arrived.
	ErrNetwork = errors.New("no response received from server")
	// ErrUnknown — anything else, including malformed responses.
	ErrUnknown = errors.New("unexpected error")
	// ErrVoiceUnavailable — the speech capability is absent or has been
	// permanently disabled for this session.
	ErrVoiceUnavailable = errors.New("speech recognition unavailable")
)

// ServerError is a non-success response from the backend.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: %d - %s", e.StatusCode, e.Message)
}

// AuthError is a rejection from the identity provider.
type AuthError struct {
	Code    string // provider error code, e.g. "INVALID_PASSWORD"
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "auth error: " + e.Code
	}
	return fmt.Sprintf("auth error: %s (%s)", e.Message, e.Code)
}

// UserMessage maps a normalized error onto the transient notice shown
// to the user. None of these are fatal; the UI stays interactive and
// the action can be retried manually.
func UserMessage(err error) string {
	var srv *ServerError
	var auth *AuthError
	switch {
	case errors.As(err, &srv):
		return srv.Error()
	case errors.As(err, &auth):
		return "Authentication failed: " + auth.Code
	case errors.Is(err, ErrNetwork):
		return "No response received from server. Please check your internet connection."
	case errors.Is(err, ErrVoiceUnavailable):
		return "Speech recognition is currently unavailable. Please type your message instead."
	default:
		return "An unexpected error occurred. Please try again later."
	}
}

// Package auth mirrors the identity provider's session: a REST client
// for the provider itself and a process-wide observable store that
// persists the minimal user record between runs.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

// Compile-time interface check.
var _ domain.IdentityProvider = (*IdentityClient)(nil)

// ── Wire types (identity toolkit REST surface) ───────────────────

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialsResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
	} `json:"users"`
}

type identityError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Client ───────────────────────────────────────────────────────

// IdentityOption configures the IdentityClient.
type IdentityOption func(*IdentityClient)

// WithIdentityTimeout sets the HTTP client timeout.
func WithIdentityTimeout(d time.Duration) IdentityOption {
	return func(c *IdentityClient) { c.http.Timeout = d }
}

// IdentityClient authenticates against a Firebase-style identity
// toolkit. Every rejection is normalized to *domain.AuthError; a dead
// network wraps domain.ErrNetwork like the chat client does.
type IdentityClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

// NewIdentityClient creates an identity provider client.
func NewIdentityClient(baseURL, apiKey string, log *logger.Logger, opts ...IdentityOption) *IdentityClient {
	c := &IdentityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SignIn exchanges credentials for a user record.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (*domain.UserSession, error) {
	var out credentialsResponse
	if err := c.post(ctx, "accounts:signInWithPassword", credentialsRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &out); err != nil {
		return nil, err
	}

	user := &domain.UserSession{UID: out.LocalID, Email: out.Email}

	// Email verification lives on the account object, not the sign-in
	// response. Best effort: a failed lookup just leaves it false.
	if verified, err := c.lookupVerified(ctx, out.IDToken); err == nil {
		user.EmailVerified = verified
	} else {
		c.log.Debug("auth: account lookup failed: %v", err)
	}

	c.log.Info("auth: signed in %s", user.Email)
	return user, nil
}

// SignUp creates an account. Fresh accounts are never email-verified.
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*domain.UserSession, error) {
	var out credentialsResponse
	if err := c.post(ctx, "accounts:signUp", credentialsRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &out); err != nil {
		return nil, err
	}

	c.log.Info("auth: signed up %s", out.Email)
	return &domain.UserSession{UID: out.LocalID, Email: out.Email}, nil
}

func (c *IdentityClient) lookupVerified(ctx context.Context, idToken string) (bool, error) {
	var out lookupResponse
	if err := c.post(ctx, "accounts:lookup", lookupRequest{IDToken: idToken}, &out); err != nil {
		return false, err
	}
	if len(out.Users) == 0 {
		return false, fmt.Errorf("%w: empty lookup response", domain.ErrUnknown)
	}
	return out.Users[0].EmailVerified, nil
}

func (c *IdentityClient) post(ctx context.Context, action string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encoding request: %v", domain.ErrUnknown, err)
	}

	url := c.baseURL + "/" + action
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", domain.ErrUnknown, err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("auth: POST %s", action)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", domain.ErrUnknown, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ie identityError
		if err := json.Unmarshal(respBody, &ie); err == nil && ie.Error.Message != "" {
			return &domain.AuthError{Code: ie.Error.Message}
		}
		return &domain.AuthError{Code: fmt.Sprintf("HTTP_%d", resp.StatusCode)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrUnknown, err)
	}
	return nil
}

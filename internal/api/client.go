// Package api provides the HTTP client for the EchoSoul backend. It is
// the single point of contact with the server: every transport concern
// is normalized here so callers only ever see *domain.ServerError,
// domain.ErrNetwork wraps, or domain.ErrUnknown wraps.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

// Compile-time interface check.
var _ domain.ChatAPI = (*Client)(nil)

// ── Wire types ───────────────────────────────────────────────────

type sendRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chat_id,omitempty"`
}

type sendResponse struct {
	Response      string             `json:"response"`
	Emotion       string             `json:"emotion"`
	ChatID        string             `json:"chat_id"`
	EmotionScores map[string]float64 `json:"emotion_scores"`
}

type historyItem struct {
	UserInput   string `json:"user_input"`
	BotResponse string `json:"bot_response"`
	Emotion     string `json:"emotion"`
	Timestamp   string `json:"timestamp"`
}

type chatItem struct {
	ID          string `json:"id"`
	LastUpdated string `json:"last_updated"`
}

type recommendationsResponse struct {
	EmotionSummary       string   `json:"emotion_summary"`
	MusicRecommendations []string `json:"music_recommendations"`
	MovieRecommendations []string `json:"movie_recommendations"`
	BookRecommendations  []string `json:"book_recommendations"`
	ActivitySuggestions  []string `json:"activity_suggestions"`
}

// errorBody is the backend's error envelope, when it bothers with one.
type errorBody struct {
	Message string `json:"message"`
}

// ── Client ───────────────────────────────────────────────────────

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// Client talks to the EchoSoul backend. Construct one at startup and
// pass it by reference; there is no package-level instance.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a backend client.
//   - baseURL: the backend base path including /api,
//     e.g. "http://127.0.0.1:5000/api"
func NewClient(baseURL string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SendMessage posts a user message. An empty chatID asks the backend to
// create a new chat; the reply carries the assigned id either way.
func (c *Client) SendMessage(ctx context.Context, message, chatID string) (*domain.ChatReply, error) {
	var out sendResponse
	err := c.do(ctx, http.MethodPost, "/chat", sendRequest{Message: message, ChatID: chatID}, &out)
	if err != nil {
		return nil, err
	}

	c.log.Debug("api: reply for chat %s (emotion=%s, %d chars)", out.ChatID, out.Emotion, len(out.Response))
	return &domain.ChatReply{
		Text:    out.Response,
		Emotion: domain.ParseEmotion(out.Emotion),
		ChatID:  out.ChatID,
		Scores:  domain.ParseScores(out.EmotionScores),
	}, nil
}

// GetChatMessages fetches one chat's history, oldest first. The backend
// already orders by timestamp ascending; the order is preserved as-is.
func (c *Client) GetChatMessages(ctx context.Context, chatID string) ([]domain.HistoryEntry, error) {
	var items []historyItem
	if err := c.do(ctx, http.MethodGet, "/chat/"+chatID+"/messages", nil, &items); err != nil {
		return nil, err
	}

	entries := make([]domain.HistoryEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, domain.HistoryEntry{
			UserInput:   it.UserInput,
			BotResponse: it.BotResponse,
			Emotion:     domain.ParseEmotion(it.Emotion),
			Timestamp:   parseTimestamp(it.Timestamp),
		})
	}
	return entries, nil
}

// GetChats lists all chat sessions. An empty account yields an empty
// slice, not an error.
func (c *Client) GetChats(ctx context.Context) ([]domain.ChatSession, error) {
	var items []chatItem
	if err := c.do(ctx, http.MethodGet, "/chats", nil, &items); err != nil {
		return nil, err
	}

	chats := make([]domain.ChatSession, 0, len(items))
	for _, it := range items {
		chats = append(chats, domain.ChatSession{
			ID:          it.ID,
			LastUpdated: parseTimestamp(it.LastUpdated),
		})
	}
	return chats, nil
}

// DeleteChat removes a chat session. A 404 is treated as success —
// absence of the resource is indistinguishable from deletion here.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	err := c.do(ctx, http.MethodDelete, "/chat/"+chatID, nil, nil)
	var srv *domain.ServerError
	if errors.As(err, &srv) && srv.StatusCode == http.StatusNotFound {
		c.log.Debug("api: delete chat %s: already gone", chatID)
		return nil
	}
	return err
}

// ProcessChat asks the backend to synthesize recommendations from a
// whole chat.
func (c *Client) ProcessChat(ctx context.Context, chatID string) (*domain.Recommendations, error) {
	var out recommendationsResponse
	if err := c.do(ctx, http.MethodGet, "/process_chat/"+chatID, nil, &out); err != nil {
		return nil, err
	}
	return &domain.Recommendations{
		EmotionSummary: out.EmotionSummary,
		Music:          out.MusicRecommendations,
		Movies:         out.MovieRecommendations,
		Books:          out.BookRecommendations,
		Activities:     out.ActivitySuggestions,
	}, nil
}

// ── Transport & normalization ────────────────────────────────────

// do executes one request and normalizes every failure mode. A nil out
// skips body decoding.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %v", domain.ErrUnknown, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", domain.ErrUnknown, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("api: %s %s", method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		// Request sent, no response received.
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", domain.ErrUnknown, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ServerError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrUnknown, err)
	}
	return nil
}

// serverMessage pulls the backend's {message} field out of an error
// body. Falls back to "Unknown error" like the original client did.
func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}
	return "Unknown error"
}

// timestampFormats are tried in order. The backend serializes Firestore
// timestamps through Flask's jsonify, which emits RFC 1123; RFC 3339
// covers any saner deployment.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
}

// parseTimestamp decodes a wire timestamp leniently. Unparseable
// values yield the zero time; timestamps are display-only client-side.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

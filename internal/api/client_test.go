package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

// fakeBackend mimics the EchoSoul backend's wire contract in memory.
type fakeBackend struct {
	mu      sync.Mutex
	nextID  int
	chats   map[string][]historyItem
	deleted []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{chats: make(map[string][]historyItem)}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		id := req.ChatID
		if id == "" {
			b.nextID++
			id = fmt.Sprintf("chat-%d", b.nextID)
		}
		b.chats[id] = append(b.chats[id], historyItem{
			UserInput:   req.Message,
			BotResponse: "echo: " + req.Message,
			Emotion:     "joy",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		})
		b.mu.Unlock()

		json.NewEncoder(w).Encode(sendResponse{
			Response:      "echo: " + req.Message,
			Emotion:       "joy",
			ChatID:        id,
			EmotionScores: map[string]float64{"joy": 0.9, "sadness": 0.02, "anger": 0.03, "fear": 0.05},
		})
	})

	mux.HandleFunc("GET /chats", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		items := make([]chatItem, 0, len(b.chats))
		for id := range b.chats {
			items = append(items, chatItem{ID: id, LastUpdated: time.Now().UTC().Format(time.RFC3339)})
		}
		b.mu.Unlock()
		json.NewEncoder(w).Encode(items)
	})

	mux.HandleFunc("GET /chat/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		msgs, ok := b.chats[r.PathValue("id")]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(errorBody{Message: "chat not found"})
			return
		}
		json.NewEncoder(w).Encode(msgs)
	})

	mux.HandleFunc("DELETE /chat/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		b.mu.Lock()
		_, ok := b.chats[id]
		delete(b.chats, id)
		b.deleted = append(b.deleted, id)
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logger.New(logger.LevelOff, nil)), srv
}

func TestSendMessageCreatesChat(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend.handler())
	ctx := context.Background()

	reply, err := client.SendMessage(ctx, "hello there", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.ChatID == "" {
		t.Fatal("expected a backend-assigned chat id")
	}
	if reply.Emotion != domain.EmotionJoy {
		t.Errorf("emotion = %s, want joy", reply.Emotion)
	}
	if reply.Scores[domain.EmotionJoy] != 0.9 {
		t.Errorf("joy score = %v, want 0.9", reply.Scores[domain.EmotionJoy])
	}

	// Round-trip: the new chat id shows up in the listing.
	chats, err := client.GetChats(ctx)
	if err != nil {
		t.Fatalf("get chats: %v", err)
	}
	found := false
	for _, c := range chats {
		if c.ID == reply.ChatID {
			found = true
		}
	}
	if !found {
		t.Fatalf("chat %s missing from listing %v", reply.ChatID, chats)
	}

	// A second message with the id reuses the chat.
	again, err := client.SendMessage(ctx, "still here", reply.ChatID)
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if again.ChatID != reply.ChatID {
		t.Fatalf("chat id changed: %s -> %s", reply.ChatID, again.ChatID)
	}
}

func TestGetChatsEmptyAccount(t *testing.T) {
	client, _ := newTestClient(t, newFakeBackend().handler())

	chats, err := client.GetChats(context.Background())
	if err != nil {
		t.Fatalf("get chats: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected empty listing, got %v", chats)
	}
}

func TestGetChatMessagesOrderPreserved(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend.handler())
	ctx := context.Background()

	reply, err := client.SendMessage(ctx, "first", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := client.SendMessage(ctx, "second", reply.ChatID); err != nil {
		t.Fatalf("send: %v", err)
	}

	entries, err := client.GetChatMessages(ctx, reply.ChatID)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserInput != "first" || entries[1].UserInput != "second" {
		t.Fatalf("history out of order: %+v", entries)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("timestamp did not parse")
	}
}

func TestDeleteChatIdempotent(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend.handler())
	ctx := context.Background()

	reply, err := client.SendMessage(ctx, "doomed", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := client.DeleteChat(ctx, reply.ChatID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting again hits a 404, which this layer swallows.
	if err := client.DeleteChat(ctx, reply.ChatID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestErrorNormalization(t *testing.T) {
	t.Run("server error with message", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errorBody{Message: "model exploded"})
		}))

		_, err := client.SendMessage(context.Background(), "hi", "")
		var srv *domain.ServerError
		if !errors.As(err, &srv) {
			t.Fatalf("expected *ServerError, got %v", err)
		}
		if srv.StatusCode != http.StatusInternalServerError || srv.Message != "model exploded" {
			t.Fatalf("unexpected server error: %+v", srv)
		}
	})

	t.Run("server error without body", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := client.GetChats(context.Background())
		var srv *domain.ServerError
		if !errors.As(err, &srv) {
			t.Fatalf("expected *ServerError, got %v", err)
		}
		if srv.Message != "Unknown error" {
			t.Fatalf("message = %q, want fallback", srv.Message)
		}
	})

	t.Run("network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		client := NewClient(srv.URL, logger.New(logger.LevelOff, nil))
		srv.Close() // nothing listening anymore

		_, err := client.GetChats(context.Background())
		if !errors.Is(err, domain.ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>definitely not json</html>")
		}))

		_, err := client.GetChats(context.Background())
		if !errors.Is(err, domain.ErrUnknown) {
			t.Fatalf("expected ErrUnknown, got %v", err)
		}
	})
}

func TestProcessChat(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/process_chat/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(recommendationsResponse{
			EmotionSummary:       "mostly joyful",
			MusicRecommendations: []string{"Here Comes the Sun"},
			MovieRecommendations: []string{"Amelie"},
			BookRecommendations:  []string{"The Little Prince"},
			ActivitySuggestions:  []string{"take a walk"},
		})
	}))

	recs, err := client.ProcessChat(context.Background(), "chat-1")
	if err != nil {
		t.Fatalf("process chat: %v", err)
	}
	if recs.EmotionSummary != "mostly joyful" {
		t.Errorf("summary = %q", recs.EmotionSummary)
	}
	if len(recs.Music) != 1 || len(recs.Movies) != 1 || len(recs.Books) != 1 || len(recs.Activities) != 1 {
		t.Fatalf("unexpected recommendations: %+v", recs)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in     string
		isZero bool
	}{
		{"2024-10-02T13:00:00Z", false},
		{"2024-10-02T13:00:00.123456Z", false},
		{"Wed, 02 Oct 2024 13:00:00 GMT", false},
		{"not a time", true},
		{"", true},
	}
	for _, tt := range tests {
		got := parseTimestamp(tt.in)
		if got.IsZero() != tt.isZero {
			t.Errorf("parseTimestamp(%q).IsZero() = %v, want %v", tt.in, got.IsZero(), tt.isZero)
		}
	}
}

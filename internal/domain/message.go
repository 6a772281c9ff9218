// Package domain holds the client's data model, error taxonomy, and
// the ports its adapters implement.
package domain

import "time"

// ChatMessage is one line of the in-memory conversation transcript.
// Immutable once appended. Transcripts are not persisted client-side;
// history is fetched fresh from the backend per chat.
type ChatMessage struct {
	Text    string
	IsUser  bool
	Emotion EmotionLabel
	Scores  EmotionVector
}

// ChatReply is the backend's answer to a sent message.
type ChatReply struct {
	Text    string
	Emotion EmotionLabel
	ChatID  string // backend-assigned; echoes the request's id or names a new chat
	Scores  EmotionVector
}

// ChatSession identifies a server-side conversation thread. Identity is
// assigned by the backend; the client never caches sessions beyond the
// current view.
type ChatSession struct {
	ID          string
	LastUpdated time.Time
}

// HistoryEntry is one exchange within a chat's stored history.
type HistoryEntry struct {
	UserInput   string
	BotResponse string
	Emotion     EmotionLabel
	Timestamp   time.Time
}

// Messages expands one stored exchange into transcript lines, the
// user's side first. History stores no per-entry scores; only the bot
// line carries the emotion.
func (h HistoryEntry) Messages() []ChatMessage {
	return []ChatMessage{
		{Text: h.UserInput, IsUser: true},
		{Text: h.BotResponse, Emotion: h.Emotion},
	}
}

// Recommendations is the synthesis the backend produces from a whole
// chat: an emotion summary plus media and activity suggestions.
type Recommendations struct {
	EmotionSummary string
	Music          []string
	Movies         []string
	Books          []string
	Activities     []string
}

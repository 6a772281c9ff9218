package domain

import "context"

// ChatAPI is the single point of contact with the EchoSoul backend.
// All failures are normalized before they reach the caller: a non-2xx
// response becomes *ServerError, a transport failure wraps ErrNetwork,
// and anything else (malformed bodies included) wraps ErrUnknown.
type ChatAPI interface {
	// SendMessage posts text to an existing chat, or implicitly creates
	// a new chat when chatID is empty. The reply names the chat id.
	SendMessage(ctx context.Context, message, chatID string) (*ChatReply, error)
	// GetChatMessages fetches the full history of one chat, oldest first.
	GetChatMessages(ctx context.Context, chatID string) ([]HistoryEntry, error)
	// GetChats lists the chat sessions visible to the caller.
	GetChats(ctx context.Context) ([]ChatSession, error)
	// DeleteChat removes a chat. Idempotent from the caller's
	// perspective: a missing chat is not distinguished from success.
	DeleteChat(ctx context.Context, chatID string) error
	// ProcessChat returns recommendations synthesized from one chat.
	ProcessChat(ctx context.Context, chatID string) (*Recommendations, error)
}

// Recognizer converts microphone audio to text. One utterance per
// session; one session at a time. The result callback is a single
// slot: registering replaces any previous subscriber.
type Recognizer interface {
	StartListening()
	StopListening()
	OnResult(fn func(transcript string))
	ClearResult()
	// Available reports whether voice input is still usable. Once the
	// recognizer disables itself it stays disabled for the session.
	Available() bool
	IsRecording() bool
}

// Speaker converts text to audible speech. Requests are serialized;
// two utterances never play concurrently.
type Speaker interface {
	// Speak queues text for playback. onComplete fires exactly once
	// when the utterance finishes, fails, or is cancelled. May be nil.
	Speak(text string, onComplete func())
	// Stop cancels any in-flight and queued playback. Safe when idle.
	Stop()
	IsSpeaking() bool
}

// IntentParser turns raw user input, typed or transcribed, into an
// Intent. Parsing never fails: unrecognized input is a plain message.
type IntentParser interface {
	Parse(input string) *Intent
}

// IdentityProvider authenticates against the external identity service.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*UserSession, error)
	SignUp(ctx context.Context, email, password string) (*UserSession, error)
}

// CredentialStore persists the minimal user record (the local-storage
// analog). Load returns ErrNotFound when no record exists; Clear is
// idempotent.
type CredentialStore interface {
	Save(user *UserSession) error
	Load() (*UserSession, error)
	Clear() error
}

// Notifier delivers transient user-facing notices. Implementations
// write to the terminal scrollback; nothing is persisted.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

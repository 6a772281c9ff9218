package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/echosoul/echosoul/internal/display"
	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
	"github.com/echosoul/echosoul/internal/speech"
)

// cliApp holds the client's session state and routes parsed intents.
type cliApp struct {
	backend    domain.ChatAPI
	session    sessionStore
	parser     domain.IntentParser
	speaker    domain.Speaker
	recognizer domain.Recognizer
	notifier   domain.Notifier
	ui         *display.UI
	log        *logger.Logger

	mu         sync.Mutex
	chatID     string // current chat, empty until the first reply
	emotion    domain.EmotionLabel
	hasEmotion bool
	pending    string               // token of the in-flight send, empty when idle
	chats      []domain.ChatSession // last listing, for numeric selection
}

// sessionStore is what the app needs from the auth layer.
type sessionStore interface {
	IsLoggedIn() bool
	Current() *domain.UserSession
	Login(ctx context.Context, email, password string) (*domain.UserSession, error)
	SignUp(ctx context.Context, email, password string) (*domain.UserSession, error)
	Logout(ctx context.Context) error
}

// sendResult carries a backend reply from the request goroutine back
// into the run loop. The token pairs it with the send that produced
// it; a reply whose token is no longer pending is stale and dropped.
type sendResult struct {
	token string
	text  string // what the user sent
	reply *domain.ChatReply
	err   error
}

// status is polled by the UI tick to render the bottom bar.
func (a *cliApp) status() display.Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := display.Status{
		Emotion:    a.emotion,
		HasEmotion: a.hasEmotion,
		Recording:  a.recognizer.IsRecording(),
		Speaking:   a.speaker.IsSpeaking(),
	}
	if u := a.session.Current(); u != nil {
		s.User = u.Email
	}
	return s
}

func (a *cliApp) run(ctx context.Context) {
	if a.session.IsLoggedIn() {
		a.ui.PrintHint("Welcome back, " + a.session.Current().Email + ".")
	} else {
		a.ui.PrintHint("Not logged in. Use: login <email> <password>")
	}

	// Voice transcripts land in the same loop as typed input so every
	// mutation of app state happens on this goroutine.
	voiceCh := make(chan string, 4)
	a.recognizer.OnResult(func(transcript string) {
		select {
		case voiceCh <- transcript:
		default:
			a.log.Warn("app: voice transcript dropped, input backlog full")
		}
	})
	defer a.recognizer.ClearResult()

	resultCh := make(chan sendResult, 4)

	for {
		select {
		case <-ctx.Done():
			return

		case input, ok := <-a.ui.InputChan():
			if !ok {
				return
			}
			if done := a.handleInput(ctx, input, resultCh); done {
				return
			}

		case transcript := <-voiceCh:
			a.ui.PrintVoice(transcript)
			if done := a.handleInput(ctx, transcript, resultCh); done {
				return
			}

		case res := <-resultCh:
			a.applySendResult(res)
		}
	}
}

// handleInput parses and dispatches one line. Returns true on quit.
func (a *cliApp) handleInput(ctx context.Context, input string, resultCh chan<- sendResult) bool {
	intent := a.parser.Parse(input)
	a.log.Debug("app: intent %s (payload=%q)", intent.Type, intent.Payload)

	switch intent.Type {
	case domain.IntentQuit:
		a.speaker.Stop()
		return true

	case domain.IntentHelp:
		a.printHelp()

	case domain.IntentSay:
		if intent.Payload == "" {
			break
		}
		a.sendMessage(ctx, intent.Payload, resultCh)

	case domain.IntentListChats:
		a.listChats(ctx)

	case domain.IntentOpenChat:
		a.openChat(ctx, intent.Payload)

	case domain.IntentNewChat:
		a.newChat()

	case domain.IntentDeleteChat:
		a.deleteChat(ctx, intent.Payload)

	case domain.IntentRecommend:
		a.recommend(ctx)

	case domain.IntentLogin:
		a.login(ctx, intent.Payload, false)

	case domain.IntentSignUp:
		a.login(ctx, intent.Payload, true)

	case domain.IntentLogout:
		a.logout(ctx)

	case domain.IntentWhoAmI:
		if u := a.session.Current(); u != nil {
			verified := "email not verified"
			if u.EmailVerified {
				verified = "email verified"
			}
			a.ui.PrintLine(fmt.Sprintf("%s (%s)", u.Email, verified))
		} else {
			a.ui.PrintHint("Not logged in.")
		}

	case domain.IntentMic:
		if !a.recognizer.Available() {
			a.notifier.NotifyUrgent(ctx, speech.NoticeVoiceUnavailable())
			break
		}
		a.notifier.Notify(ctx, speech.NoticeListening())
		a.recognizer.StartListening()

	case domain.IntentMute:
		a.recognizer.StopListening()
		a.ui.PrintHint("Microphone off.")

	case domain.IntentHush:
		a.speaker.Stop()
	}
	return false
}

// ── Chatting ─────────────────────────────────────────────────────

// sendMessage fires the backend request on its own goroutine so the
// REPL stays responsive. Sending again before the reply arrives
// replaces the pending token, which orphans the older request: its
// reply is dropped on arrival instead of clobbering the newer state.
func (a *cliApp) sendMessage(ctx context.Context, text string, resultCh chan<- sendResult) {
	if !a.requireLogin() {
		return
	}

	token := uuid.NewString()
	a.mu.Lock()
	a.pending = token
	chatID := a.chatID
	a.mu.Unlock()

	a.ui.PrintUser(text)

	go func() {
		reply, err := a.backend.SendMessage(ctx, text, chatID)
		select {
		case resultCh <- sendResult{token: token, text: text, reply: reply, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (a *cliApp) applySendResult(res sendResult) {
	a.mu.Lock()
	if res.token != a.pending {
		a.mu.Unlock()
		a.log.Debug("app: dropping stale reply for %q", res.text)
		return
	}
	a.pending = ""
	a.mu.Unlock()

	if res.err != nil {
		a.log.Error("app: send failed: %v", res.err)
		// Placeholder response; the emotion state is left untouched.
		a.ui.PrintUrgent(domain.UserMessage(res.err))
		return
	}

	a.mu.Lock()
	a.chatID = res.reply.ChatID
	a.emotion = res.reply.Emotion
	a.hasEmotion = true
	a.mu.Unlock()

	a.ui.PrintBot(res.reply.Text, res.reply.Emotion)
	if hint, ok := moodHint(res.reply.Scores); ok {
		a.ui.PrintHint(hint)
	}
	a.speaker.Speak(res.reply.Text, nil)
}

// moodHint renders the score breakdown shown under a reply when the
// backend includes one.
func moodHint(scores domain.EmotionVector) (string, bool) {
	if len(scores) == 0 {
		return "", false
	}
	d := scores.Dominant()
	return fmt.Sprintf("mood: %s (%.0f%%)", d, scores[d]*100), true
}

func (a *cliApp) newChat() {
	a.mu.Lock()
	a.chatID = ""
	a.emotion = domain.EmotionNeutral
	a.hasEmotion = false
	a.mu.Unlock()
	a.ui.PrintHint("Started a fresh chat. Say something.")
}

// ── Chat management ──────────────────────────────────────────────

func (a *cliApp) listChats(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	chats, err := a.backend.GetChats(ctx)
	if err != nil {
		a.log.Error("app: listing chats: %v", err)
		a.ui.PrintUrgent(domain.UserMessage(err))
		return
	}

	a.mu.Lock()
	a.chats = chats
	a.mu.Unlock()

	if len(chats) == 0 {
		a.ui.PrintHint("No chats yet. Say something to start one.")
		return
	}
	a.ui.PrintLine("Your chats:")
	for i, c := range chats {
		when := ""
		if !c.LastUpdated.IsZero() {
			when = "  (" + c.LastUpdated.Format("Jan 2 15:04") + ")"
		}
		a.ui.PrintLine(fmt.Sprintf("  %d. %s%s", i+1, c.ID, when))
	}
	a.ui.PrintHint("Type a number to open one, or 'delete <n>' to remove it.")
}

// pickChat resolves a 1-based listing number to a chat session.
func (a *cliApp) pickChat(arg string) (domain.ChatSession, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		a.ui.PrintHint("Give a chat number from the last 'chats' listing.")
		return domain.ChatSession{}, false
	}

	a.mu.Lock()
	chats := a.chats
	a.mu.Unlock()

	if len(chats) == 0 {
		a.ui.PrintHint("Run 'chats' first to see the listing.")
		return domain.ChatSession{}, false
	}
	if n < 1 || n > len(chats) {
		a.ui.PrintHint(fmt.Sprintf("No chat %d; the listing has %d.", n, len(chats)))
		return domain.ChatSession{}, false
	}
	return chats[n-1], true
}

func (a *cliApp) openChat(ctx context.Context, arg string) {
	if !a.requireLogin() {
		return
	}
	chat, ok := a.pickChat(arg)
	if !ok {
		return
	}

	history, err := a.backend.GetChatMessages(ctx, chat.ID)
	if err != nil {
		a.log.Error("app: fetching history for %s: %v", chat.ID, err)
		a.ui.PrintUrgent(domain.UserMessage(err))
		return
	}

	a.mu.Lock()
	a.chatID = chat.ID
	a.hasEmotion = false
	if len(history) > 0 {
		a.emotion = history[len(history)-1].Emotion
		a.hasEmotion = true
	}
	a.mu.Unlock()

	a.ui.PrintLine("Opened chat " + chat.ID + ".")
	for _, h := range history {
		for _, m := range h.Messages() {
			if m.IsUser {
				a.ui.PrintUser(m.Text)
			} else {
				a.ui.PrintBot(m.Text, m.Emotion)
			}
		}
	}
}

func (a *cliApp) deleteChat(ctx context.Context, arg string) {
	if !a.requireLogin() {
		return
	}
	chat, ok := a.pickChat(arg)
	if !ok {
		return
	}

	if err := a.backend.DeleteChat(ctx, chat.ID); err != nil {
		a.log.Error("app: deleting %s: %v", chat.ID, err)
		a.ui.PrintUrgent(domain.UserMessage(err))
		return
	}

	a.mu.Lock()
	if a.chatID == chat.ID {
		a.chatID = ""
		a.hasEmotion = false
	}
	// Invalidate the listing; the numbers no longer line up.
	a.chats = nil
	a.mu.Unlock()

	a.ui.PrintHint("Deleted chat " + chat.ID + ".")
}

func (a *cliApp) recommend(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	a.mu.Lock()
	chatID := a.chatID
	a.mu.Unlock()
	if chatID == "" {
		a.ui.PrintHint("No active chat. Say something first, or open one with 'chats'.")
		return
	}

	recs, err := a.backend.ProcessChat(ctx, chatID)
	if err != nil {
		a.log.Error("app: recommendations for %s: %v", chatID, err)
		a.ui.PrintUrgent(domain.UserMessage(err))
		return
	}

	if recs.EmotionSummary != "" {
		a.ui.PrintLine(recs.EmotionSummary)
		a.speaker.Speak(recs.EmotionSummary, nil)
	}
	a.printRecList("Music", recs.Music)
	a.printRecList("Movies", recs.Movies)
	a.printRecList("Books", recs.Books)
	a.printRecList("Activities", recs.Activities)
}

func (a *cliApp) printRecList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	a.ui.PrintLine(label + ":")
	for _, item := range items {
		a.ui.PrintLine("  - " + item)
	}
}

// ── Account ──────────────────────────────────────────────────────

// login handles both login and signup; they differ only in which
// provider call runs.
func (a *cliApp) login(ctx context.Context, payload string, signup bool) {
	verb := "login"
	if signup {
		verb = "signup"
	}

	parts := strings.Fields(payload)
	if len(parts) != 2 {
		a.ui.PrintHint("Usage: " + verb + " <email> <password>")
		return
	}
	email, password := parts[0], parts[1]

	var (
		user *domain.UserSession
		err  error
	)
	if signup {
		user, err = a.session.SignUp(ctx, email, password)
	} else {
		user, err = a.session.Login(ctx, email, password)
	}
	if err != nil {
		a.log.Error("app: %s failed: %v", verb, err)
		a.ui.PrintUrgent(domain.UserMessage(err))
		return
	}

	a.newChat()
	a.ui.PrintHint("Logged in as " + user.Email + ".")
}

func (a *cliApp) logout(ctx context.Context) {
	if !a.session.IsLoggedIn() {
		a.ui.PrintHint("Already logged out.")
		return
	}
	if err := a.session.Logout(ctx); err != nil {
		a.log.Error("app: logout: %v", err)
	}
	a.newChat()
	a.ui.PrintHint("Logged out.")
}

func (a *cliApp) requireLogin() bool {
	if a.session.IsLoggedIn() {
		return true
	}
	a.ui.PrintHint("Log in first: login <email> <password>")
	return false
}

// ── Help ─────────────────────────────────────────────────────────

func (a *cliApp) printHelp() {
	a.ui.PrintLine("Commands:")
	a.ui.PrintLine("  chats              list your chats")
	a.ui.PrintLine("  <n>                open chat n from the listing")
	a.ui.PrintLine("  new                start a fresh chat")
	a.ui.PrintLine("  delete <n>         delete chat n")
	a.ui.PrintLine("  recs               recommendations for the current chat")
	a.ui.PrintLine("  login <e> <p>      log in")
	a.ui.PrintLine("  signup <e> <p>     create an account")
	a.ui.PrintLine("  logout / whoami    manage the session")
	a.ui.PrintLine("  mic / mute         voice input on / off")
	a.ui.PrintLine("  hush               stop speaking")
	a.ui.PrintLine("  quit               exit")
	a.ui.PrintHint("Anything else is sent to your companion.")
}

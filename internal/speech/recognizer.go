// Package speech provides the client's speech I/O: microphone
// speech-to-text with a bounded retry policy, and serialized
// text-to-speech playback.
package speech

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

// Compile-time interface check.
var _ domain.Recognizer = (*Recognizer)(nil)

// Recognition error codes, mirroring the Web Speech API taxonomy the
// backend contract grew up against. Only "network" is transient.
const (
	CodeNetwork      = "network"
	CodeAudioCapture = "audio-capture"
	CodeNoSpeech     = "no-speech"
	CodeAborted      = "aborted"
)

// RecognitionError is a failure reported by the capture engine.
type RecognitionError struct {
	Code    string
	Message string
}

func (e *RecognitionError) Error() string {
	if e.Message == "" {
		return "recognition error: " + e.Code
	}
	return "recognition error: " + e.Code + ": " + e.Message
}

// Event is one occurrence within a recognition session. A session
// emits zero or more transcript events (interim ones carry
// Final=false) and ends with either End or Err.
type Event struct {
	Transcript string
	Final      bool
	Err        error
	End        bool
}

// CaptureEngine is the capability port: one single-utterance capture
// session per Start, events delivered through emit. Implementations
// must emit End (or Err) exactly once per started session.
type CaptureEngine interface {
	Start(emit func(Event)) error
	Stop()
}

// RecognizerOption configures the Recognizer.
type RecognizerOption func(*Recognizer)

// WithRetryPolicy replaces the retry schedule for transient errors.
// The default is 3 retries at a constant 1s spacing.
func WithRetryPolicy(b backoff.BackOff) RecognizerOption {
	return func(r *Recognizer) { r.retry = b }
}

// Recognizer converts microphone audio to text through a CaptureEngine.
//
// State machine: idle -> recording -> idle on success or explicit stop.
// A transient (network) engine error schedules an automatic retry; any
// other error, or exhausting the retry budget, moves the recognizer to
// a terminal disabled state for the rest of the session and surfaces a
// user-facing notice.
//
// The result callback is a single slot: OnResult replaces any previous
// subscriber, it never accumulates a list. Only final transcripts are
// forwarded; interim ones are discarded here.
type Recognizer struct {
	engine   CaptureEngine
	notifier domain.Notifier
	log      *logger.Logger
	retry    backoff.BackOff

	mu           sync.Mutex
	recording    bool
	disabled     bool
	attempts     int
	callback     func(string)
	pendingRetry *time.Timer
}

// NewRecognizer creates a recognizer over the given engine. A nil
// engine means the capability is absent: voice input is disabled
// immediately, with the same notice as a mid-session failure and no
// retries attempted.
func NewRecognizer(engine CaptureEngine, notifier domain.Notifier, log *logger.Logger, opts ...RecognizerOption) *Recognizer {
	r := &Recognizer{
		engine:   engine,
		notifier: notifier,
		log:      log,
		retry:    backoff.WithMaxRetries(backoff.NewConstantBackOff(recognitionRetryDelay), maxRecognitionAttempts),
	}
	for _, opt := range opts {
		opt(r)
	}
	if engine == nil {
		r.log.Warn("recognizer: no capture engine, voice input disabled")
		r.disable()
	}
	return r
}

// StartListening begins one single-utterance recognition session.
// No-op while already recording or permanently disabled.
func (r *Recognizer) StartListening() {
	r.mu.Lock()
	if r.disabled || r.recording {
		r.mu.Unlock()
		return
	}
	r.recording = true
	r.mu.Unlock()

	r.log.Debug("recognizer: session started")
	if err := r.engine.Start(r.handleEvent); err != nil {
		r.log.Error("recognizer: starting capture: %v", err)
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		r.disable()
	}
}

// StopListening ends the session explicitly. Idempotent; also cancels
// any retry still pending so no residual timer outlives the stop.
func (r *Recognizer) StopListening() {
	r.mu.Lock()
	if r.pendingRetry != nil {
		r.pendingRetry.Stop()
		r.pendingRetry = nil
	}
	r.attempts = 0
	r.retry.Reset()
	wasRecording := r.recording
	r.recording = false
	r.mu.Unlock()

	if wasRecording {
		r.engine.Stop()
		r.log.Debug("recognizer: session stopped")
	}
}

// OnResult registers the final-transcript subscriber, replacing any
// previous one.
func (r *Recognizer) OnResult(fn func(transcript string)) {
	r.mu.Lock()
	r.callback = fn
	r.mu.Unlock()
}

// ClearResult removes the subscriber.
func (r *Recognizer) ClearResult() {
	r.mu.Lock()
	r.callback = nil
	r.mu.Unlock()
}

// Available reports whether voice input is still usable this session.
func (r *Recognizer) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.disabled
}

// IsRecording reports whether a recognition session is active.
func (r *Recognizer) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// ── Engine events ────────────────────────────────────────────────

func (r *Recognizer) handleEvent(ev Event) {
	switch {
	case ev.Err != nil:
		r.handleError(ev.Err)

	case ev.Transcript != "":
		if !ev.Final {
			r.log.Debug("recognizer: interim discarded: %q", truncate(ev.Transcript, 40))
			break
		}
		r.mu.Lock()
		fn := r.callback
		r.attempts = 0
		r.retry.Reset()
		r.mu.Unlock()

		r.log.Info("recognizer: final transcript: %q", truncate(ev.Transcript, 60))
		if fn != nil {
			fn(ev.Transcript)
		}
	}

	if ev.End {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
	}
}

func (r *Recognizer) handleError(err error) {
	r.mu.Lock()
	r.recording = false

	var re *RecognitionError
	if !errors.As(err, &re) || re.Code != CodeNetwork {
		r.mu.Unlock()
		r.log.Error("recognizer: %v", err)
		r.disable()
		return
	}

	d := r.retry.NextBackOff()
	if d == backoff.Stop {
		r.mu.Unlock()
		r.log.Error("recognizer: retry budget exhausted: %v", err)
		r.disable()
		return
	}

	r.attempts++
	attempt := r.attempts
	r.pendingRetry = time.AfterFunc(d, func() {
		r.mu.Lock()
		r.pendingRetry = nil
		r.mu.Unlock()
		r.StartListening()
	})
	r.mu.Unlock()

	r.log.Warn("recognizer: transient error, retrying in %s (attempt %d/%d)", d, attempt, maxRecognitionAttempts)
}

// disable moves the recognizer to its terminal state and surfaces the
// user-facing notice. Safe to call more than once; the notice fires
// only on the first transition.
func (r *Recognizer) disable() {
	r.mu.Lock()
	if r.disabled {
		r.mu.Unlock()
		return
	}
	r.disabled = true
	r.recording = false
	if r.pendingRetry != nil {
		r.pendingRetry.Stop()
		r.pendingRetry = nil
	}
	r.mu.Unlock()

	r.log.Warn("recognizer: voice input disabled for this session")
	if r.notifier != nil {
		r.notifier.NotifyUrgent(context.Background(), NoticeVoiceUnavailable())
	}
}

package speech

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

var _ CaptureEngine = (*WhisperEngine)(nil)

// WhisperEngine captures a single utterance from the default
// microphone and transcribes it locally with whisper.cpp. Each Start
// spins up one recording session; the session ends when the caller
// stops it, when the utterance cap elapses, or when the transcriber
// delivers its text.
//
// Whisper gives no interim results, so every transcript event this
// engine emits is final.
type WhisperEngine struct {
	whisperBin string
	modelPath  string
	tempDir    string
	log        *logger.Logger

	mu     sync.Mutex
	stopFn func()
}

// NewWhisperEngine validates the whisper binary and model up front so
// a missing install reads as an absent capability rather than a
// mid-session failure.
func NewWhisperEngine(whisperBin, modelPath, tempDir string, log *logger.Logger) (*WhisperEngine, error) {
	if _, err := exec.LookPath(whisperBin); err != nil {
		return nil, fmt.Errorf("%w: whisper binary %q not found", domain.ErrVoiceUnavailable, whisperBin)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: whisper model %q not found", domain.ErrVoiceUnavailable, modelPath)
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: temp dir: %v", domain.ErrVoiceUnavailable, err)
	}
	return &WhisperEngine{
		whisperBin: whisperBin,
		modelPath:  modelPath,
		tempDir:    tempDir,
		log:        log,
	}, nil
}

// Start begins one capture session. Events go to emit; the session
// always terminates with exactly one End or Err event.
func (w *WhisperEngine) Start(emit func(Event)) error {
	callback := captureCallback(emit)

	verbose := w.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		w.whisperBin,
		w.modelPath,
		w.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		return &RecognitionError{Code: CodeAudioCapture, Message: err.Error()}
	}

	if err := t.Start(); err != nil {
		return &RecognitionError{Code: CodeAudioCapture, Message: err.Error()}
	}

	// Cap the utterance so a forgotten session doesn't record forever.
	capTimer := time.AfterFunc(maxUtterance, func() {
		w.log.Debug("engine: utterance cap reached, stopping capture")
		t.Stop()
	})

	w.mu.Lock()
	w.stopFn = func() {
		capTimer.Stop()
		t.Stop()
	}
	w.mu.Unlock()

	return nil
}

// captureCallback adapts the transcriber's text callback into session
// events. The transcriber can invoke it more than once per recording;
// only the first invocation emits — the session is over after End, and
// late text must not surface as a stray transcript.
func captureCallback(emit func(Event)) func(string) {
	var once sync.Once
	return func(text string) {
		once.Do(func() {
			if text = scrubTranscript(text); text != "" {
				emit(Event{Transcript: text, Final: true})
			}
			emit(Event{End: true})
		})
	}
}

// Stop ends the active capture session, if any. The transcriber's
// callback still fires with whatever was captured so far.
func (w *WhisperEngine) Stop() {
	w.mu.Lock()
	fn := w.stopFn
	w.stopFn = nil
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

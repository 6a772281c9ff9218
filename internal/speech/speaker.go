package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

var _ domain.Speaker = (*Speaker)(nil)

// Synthesizer turns text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voice() string
}

// AudioPlayer plays one audio buffer at a time, blocking until done.
type AudioPlayer interface {
	Play(data []byte) error
	Stop()
}

// SpeakerOption configures the Speaker.
type SpeakerOption func(*Speaker)

// WithCacheDir sets the filesystem directory for persistent audio
// caching. Empty disables the disk layer.
func WithCacheDir(dir string) SpeakerOption {
	return func(s *Speaker) { s.cacheDir = dir }
}

// WithDiskWrite controls whether new cache entries are written to
// disk. Existing entries are still read either way.
func WithDiskWrite(enabled bool) SpeakerOption {
	return func(s *Speaker) { s.diskWrite = enabled }
}

// utterance is one queued piece of speech. done fires exactly once no
// matter how the utterance ends: played, failed, or dropped by Stop.
type utterance struct {
	text string
	done func()
}

// Speaker serializes all speech output through a single pipeline:
// queue -> synthesize -> play. Utterances play in submission order and
// never overlap. Emojis are stripped before synthesis; an utterance
// that is empty after stripping completes immediately without touching
// the synthesizer.
//
// An AudioCache avoids re-synthesizing identical text.
type Speaker struct {
	tts    Synthesizer
	player AudioPlayer
	log    *logger.Logger
	cache  *AudioCache

	mu          sync.Mutex
	queue       []utterance
	notify      chan struct{}
	speaking    bool
	interrupted bool // set by Stop, checked before playback
	cacheDir    string
	diskWrite   bool
}

// NewSpeaker creates a speech pipeline over the given synthesizer and
// player.
func NewSpeaker(tts Synthesizer, player AudioPlayer, log *logger.Logger, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		tts:       tts,
		player:    player,
		log:       log,
		notify:    make(chan struct{}, 32),
		diskWrite: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = NewAudioCache(tts.Voice(), s.cacheDir, s.diskWrite, log)
	return s
}

// Start begins the playback goroutine. Non-blocking.
func (s *Speaker) Start(ctx context.Context) {
	go s.processLoop(ctx)
	s.log.Info("speaker started (voice=%s)", s.tts.Voice())
}

// Speak queues text for playback. onComplete (may be nil) fires
// exactly once when the utterance finishes, fails, or is dropped.
// Non-blocking.
func (s *Speaker) Speak(text string, onComplete func()) {
	var once sync.Once
	done := func() {
		if onComplete != nil {
			once.Do(onComplete)
		}
	}

	text = strings.TrimSpace(stripEmojis(text))
	if text == "" {
		s.log.Debug("speaker: nothing left after emoji strip, completing immediately")
		done()
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, utterance{text: text, done: done})
	qLen := len(s.queue)
	s.mu.Unlock()

	s.log.Debug("speaker: queued (queue_len=%d): %s", qLen, truncate(text, 60))

	select {
	case s.notify <- struct{}{}:
	default: // already signaled
	}
}

// Stop halts the current playback immediately and drops everything
// queued. Dropped utterances still get their completion callback.
func (s *Speaker) Stop() {
	s.mu.Lock()
	dropped := s.queue
	s.queue = nil
	s.interrupted = true
	s.mu.Unlock()

	s.player.Stop()

	for _, u := range dropped {
		u.done()
	}
	s.log.Debug("speaker: stopped, %d queued utterances dropped", len(dropped))
}

// IsSpeaking reports whether audio is being synthesized or played.
func (s *Speaker) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

func (s *Speaker) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.log.Info("speaker stopped")
			return
		case <-s.notify:
			s.drain(ctx)
		}
	}
}

// drain plays queued utterances in order until the queue is empty.
func (s *Speaker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		s.interrupted = false
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		item := s.queue[0]
		s.queue = s.queue[1:]
		s.speaking = true
		s.mu.Unlock()

		s.play(ctx, item)

		s.mu.Lock()
		s.speaking = false
		s.mu.Unlock()
	}
}

// play synthesizes and plays one utterance, always firing its done.
func (s *Speaker) play(ctx context.Context, u utterance) {
	defer u.done()

	audio, err := s.synthesizeWithCache(ctx, u.text)
	if err != nil {
		s.log.Error("speaker: synthesis failed: %v", err)
		return
	}

	s.mu.Lock()
	abort := s.interrupted
	s.mu.Unlock()
	if abort {
		s.log.Debug("speaker: playback skipped (stopped)")
		return
	}

	if err := s.player.Play(audio); err != nil {
		s.log.Error("speaker: playback failed: %v", err)
	}
}

// synthesizeWithCache checks the cache first, otherwise synthesizes
// and stores the result.
func (s *Speaker) synthesizeWithCache(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := s.cache.Get(text); ok {
		return audio, nil
	}
	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Put(text, audio)
	return audio, nil
}

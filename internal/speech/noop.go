package speech

import "github.com/echosoul/echosoul/internal/domain"

var _ domain.Speaker = (*NoopSpeaker)(nil)

// NoopSpeaker satisfies the speaker port when speech output is
// disabled or unavailable. Completion callbacks still fire so callers
// waiting on them never hang.
type NoopSpeaker struct{}

func (NoopSpeaker) Speak(text string, onComplete func()) {
	if onComplete != nil {
		onComplete()
	}
}

func (NoopSpeaker) Stop() {}

func (NoopSpeaker) IsSpeaking() bool { return false }

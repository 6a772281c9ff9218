package speech

import "time"

// Recognition locale. Sessions are single-utterance and fixed-locale.
const DefaultLocale = "en-US"

// Fallback TTS voice when the voice catalog can't be fetched.
const DefaultVoice = "en-US-AvaNeural"

// Audio format requested from the synthesizer and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
)

// Recognition retry policy: a transient (network) error retries up to
// maxRecognitionAttempts times with a constant delay; anything else,
// or exceeding the ceiling, permanently disables voice input for the
// session.
const (
	maxRecognitionAttempts = 3
	recognitionRetryDelay  = 1 * time.Second
)

// maxUtterance caps one recognition session; capture auto-stops after
// this long even without an explicit StopListening.
const maxUtterance = 15 * time.Second

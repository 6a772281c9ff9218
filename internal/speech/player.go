package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

var _ AudioPlayer = (*Player)(nil)

// Player plays WAV audio through the system audio device via oto.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // nil when idle
}

// NewPlayer initializes the system audio context. An unavailable audio
// device is reported as ErrVoiceUnavailable so callers can fall back
// to text-only output.
func NewPlayer(log *logger.Logger) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: audio device: %v", domain.ErrVoiceUnavailable, err)
	}
	<-ready

	log.Debug("player: initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play plays WAV data synchronously, returning when playback finishes
// or Stop cuts it off.
func (p *Player) Play(wavData []byte) error {
	pcm, err := pcmData(wavData)
	if err != nil {
		return err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Stop cuts off the active playback, if any. Safe to call at any time.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("player: playback cut off")
	}
}

// pcmData locates the data chunk inside a RIFF/WAVE container and
// returns the raw PCM samples.
func pcmData(wav []byte) ([]byte, error) {
	if len(wav) < 44 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	pos := 12
	for pos+8 <= len(wav) {
		id := string(wav[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if id == "data" {
			start := pos + 8
			end := start + size
			if end > len(wav) {
				end = len(wav)
			}
			return wav[start:end], nil
		}

		pos += 8 + size
		if size%2 != 0 { // chunks are word-aligned
			pos++
		}
	}
	return nil, errors.New("wav data chunk not found")
}

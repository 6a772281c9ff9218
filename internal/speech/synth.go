package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/echosoul/echosoul/internal/logger"
)

var _ Synthesizer = (*AzureSynthesizer)(nil)

// SynthOption configures the Azure synthesizer.
type SynthOption func(*AzureSynthesizer)

// WithVoice pins the synthesis voice, bypassing ResolveVoice.
func WithVoice(voice string) SynthOption {
	return func(c *AzureSynthesizer) { c.voice = voice }
}

// WithAudioFormat sets the audio output format.
func WithAudioFormat(format string) SynthOption {
	return func(c *AzureSynthesizer) { c.format = format }
}

// WithSynthTimeout sets the HTTP timeout for synthesis requests.
func WithSynthTimeout(d time.Duration) SynthOption {
	return func(c *AzureSynthesizer) { c.httpClient.Timeout = d }
}

// WithEndpoint overrides the regional Azure endpoint. Tests point this
// at a local server.
func WithEndpoint(base string) SynthOption {
	return func(c *AzureSynthesizer) { c.endpoint = strings.TrimRight(base, "/") }
}

// Voice describes one entry from the Azure voice catalog.
type Voice struct {
	Name      string `json:"Name"`
	ShortName string `json:"ShortName"`
	Gender    string `json:"Gender"`
	Locale    string `json:"Locale"`
}

// AzureSynthesizer converts text to WAV audio via Azure Cognitive
// Services.
type AzureSynthesizer struct {
	subscriptionKey string
	endpoint        string
	voice           string
	format          string
	httpClient      *http.Client
	log             *logger.Logger
}

// Voice returns the active voice name.
func (c *AzureSynthesizer) Voice() string { return c.voice }

// NewAzureSynthesizer creates a synthesizer for the given region.
func NewAzureSynthesizer(key, region string, log *logger.Logger, opts ...SynthOption) *AzureSynthesizer {
	c := &AzureSynthesizer{
		subscriptionKey: key,
		endpoint:        fmt.Sprintf("https://%s.tts.speech.microsoft.com", region),
		voice:           DefaultVoice,
		format:          DefaultAudioFormat,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize converts text to speech audio (WAV bytes).
func (c *AzureSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ssml := c.buildSSML(text)
	c.log.Debug("synth: %d chars with voice %s", len(text), c.voice)

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/cognitiveservices/v1", strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.format)
	req.Header.Set("User-Agent", "EchoSoul/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("azure tts error %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio data: %w", err)
	}
	c.log.Debug("synth: got %d bytes of audio", len(audio))
	return audio, nil
}

// Voices fetches the regional voice catalog.
func (c *AzureSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/cognitiveservices/voices/list", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure voice list error %d", resp.StatusCode)
	}

	var voices []Voice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, fmt.Errorf("decoding voice list: %w", err)
	}
	return voices, nil
}

// ResolveVoice picks a voice from the live catalog via ChooseVoice and
// adopts it. On any catalog failure the configured default stays.
func (c *AzureSynthesizer) ResolveVoice(ctx context.Context) {
	voices, err := c.Voices(ctx)
	if err != nil {
		c.log.Warn("synth: voice catalog unavailable, keeping %s: %v", c.voice, err)
		return
	}
	c.voice = ChooseVoice(voices, c.voice)
	c.log.Info("synth: using voice %s", c.voice)
}

// ChooseVoice applies the voice preference order: an English female
// voice, then any English voice, then the first voice in the catalog,
// then the fallback.
func ChooseVoice(voices []Voice, fallback string) string {
	for _, v := range voices {
		if strings.HasPrefix(v.Locale, "en") && v.Gender == "Female" {
			return v.ShortName
		}
	}
	for _, v := range voices {
		if strings.HasPrefix(v.Locale, "en") {
			return v.ShortName
		}
	}
	if len(voices) > 0 {
		return voices[0].ShortName
	}
	return fallback
}

var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

func (c *AzureSynthesizer) buildSSML(text string) string {
	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice xml:lang='%s' name='%s'>%s</voice></speak>`,
		DefaultLocale, DefaultLocale, c.voice, ssmlEscaper.Replace(text),
	)
}

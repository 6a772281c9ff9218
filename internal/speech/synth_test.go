package speech

import (
	"strings"
	"testing"
)

func TestChooseVoice(t *testing.T) {
	enFemale := Voice{ShortName: "en-US-AvaNeural", Gender: "Female", Locale: "en-US"}
	enMale := Voice{ShortName: "en-GB-RyanNeural", Gender: "Male", Locale: "en-GB"}
	frFemale := Voice{ShortName: "fr-FR-DeniseNeural", Gender: "Female", Locale: "fr-FR"}
	deMale := Voice{ShortName: "de-DE-ConradNeural", Gender: "Male", Locale: "de-DE"}

	tests := []struct {
		name   string
		voices []Voice
		want   string
	}{
		{"english female preferred", []Voice{deMale, enMale, enFemale}, "en-US-AvaNeural"},
		{"any english when no english female", []Voice{frFemale, enMale}, "en-GB-RyanNeural"},
		{"first voice when no english", []Voice{frFemale, deMale}, "fr-FR-DeniseNeural"},
		{"fallback on empty catalog", nil, "en-US-AvaNeural"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseVoice(tt.voices, "en-US-AvaNeural"); got != tt.want {
				t.Fatalf("ChooseVoice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildSSMLEscapes(t *testing.T) {
	c := NewAzureSynthesizer("key", "eastus", testLogger())
	ssml := c.buildSSML(`tom & jerry <3 "quotes"`)

	if strings.Contains(ssml, "<3") {
		t.Fatalf("unescaped markup in SSML: %s", ssml)
	}
	for _, want := range []string{"&amp;", "&lt;3", "&quot;quotes&quot;"} {
		if !strings.Contains(ssml, want) {
			t.Fatalf("SSML missing %q: %s", want, ssml)
		}
	}
}

func TestStripEmojis(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"hello \U0001F600 world", "hello  world"},
		{"\U0001F680\U0001F30D", ""},
		{"flags \U0001F1FA\U0001F1F8 kept out", "flags  kept out"},
	}
	for _, tt := range tests {
		if got := stripEmojis(tt.in); got != tt.want {
			t.Fatalf("stripEmojis(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

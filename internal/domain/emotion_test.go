package domain

import "testing"

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		in   string
		want EmotionLabel
	}{
		{"joy", EmotionJoy},
		{"sadness", EmotionSadness},
		{"anger", EmotionAnger},
		{"fear", EmotionFear},
		{"neutral", EmotionNeutral},

		// Server strings outside the known set collapse to neutral.
		{"", EmotionNeutral},
		{"disgust", EmotionNeutral},
		{"JOY", EmotionNeutral},
	}

	for _, tt := range tests {
		if got := ParseEmotion(tt.in); got != tt.want {
			t.Errorf("ParseEmotion(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseScores(t *testing.T) {
	v := ParseScores(map[string]float64{
		"joy":     0.7,
		"sadness": 0.1,
		"anger":   0.05,
		"fear":    0.15,
		"bogus":   0.9, // untracked dimensions are dropped
	})
	if len(v) != 4 {
		t.Fatalf("expected 4 tracked scores, got %d", len(v))
	}
	if v[EmotionJoy] != 0.7 {
		t.Errorf("joy = %v, want 0.7", v[EmotionJoy])
	}
	if _, ok := v[EmotionNeutral]; ok {
		t.Error("neutral must not appear in a score vector")
	}

	if got := ParseScores(nil); got != nil {
		t.Errorf("ParseScores(nil) = %v, want nil", got)
	}
	if got := ParseScores(map[string]float64{"bogus": 1}); got != nil {
		t.Errorf("ParseScores(untracked only) = %v, want nil", got)
	}
}

func TestEmotionVectorDominant(t *testing.T) {
	v := EmotionVector{EmotionSadness: 0.6, EmotionJoy: 0.2}
	if got := v.Dominant(); got != EmotionSadness {
		t.Errorf("Dominant() = %s, want sadness", got)
	}

	var empty EmotionVector
	if got := empty.Dominant(); got != EmotionNeutral {
		t.Errorf("empty Dominant() = %s, want neutral", got)
	}
}

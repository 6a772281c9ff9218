package domain

// EmotionLabel is one of the categorical sentiment tags the backend
// attaches to every reply.
type EmotionLabel int

const (
	EmotionNeutral EmotionLabel = iota
	EmotionJoy
	EmotionSadness
	EmotionAnger
	EmotionFear
)

// String returns the wire/display name of the label.
func (e EmotionLabel) String() string {
	switch e {
	case EmotionJoy:
		return "joy"
	case EmotionSadness:
		return "sadness"
	case EmotionAnger:
		return "anger"
	case EmotionFear:
		return "fear"
	default:
		return "neutral"
	}
}

// ParseEmotion maps a server-supplied emotion string to a label.
// Strings outside the known set collapse to neutral; the backend is
// free to grow its taxonomy without breaking the client.
func ParseEmotion(s string) EmotionLabel {
	switch s {
	case "joy":
		return EmotionJoy
	case "sadness":
		return EmotionSadness
	case "anger":
		return EmotionAnger
	case "fear":
		return EmotionFear
	default:
		return EmotionNeutral
	}
}

// TrackedEmotions are the four emotions the backend scores per message.
// Neutral is a label, not a scored dimension.
func TrackedEmotions() []EmotionLabel {
	return []EmotionLabel{EmotionJoy, EmotionSadness, EmotionAnger, EmotionFear}
}

// EmotionVector maps the tracked emotions to numeric intensity. Values
// are assumed to be in [0,1] by the backend; the client enforces no
// range invariant.
type EmotionVector map[EmotionLabel]float64

// ParseScores converts a raw score object from the wire into a vector,
// keeping only the tracked dimensions. Returns nil for an empty input.
func ParseScores(raw map[string]float64) EmotionVector {
	if len(raw) == 0 {
		return nil
	}
	v := make(EmotionVector)
	for _, label := range TrackedEmotions() {
		if score, ok := raw[label.String()]; ok {
			v[label] = score
		}
	}
	if len(v) == 0 {
		return nil
	}
	return v
}

// Dominant returns the highest-scoring tracked emotion, or neutral when
// the vector is empty.
func (v EmotionVector) Dominant() EmotionLabel {
	best := EmotionNeutral
	bestScore := 0.0
	for _, label := range TrackedEmotions() {
		if score, ok := v[label]; ok && score > bestScore {
			best = label
			bestScore = score
		}
	}
	return best
}

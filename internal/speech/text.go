package speech

import (
	"regexp"
	"strings"
)

// emojiRanges are the code point blocks stripped before synthesis.
// Speech engines can't render them and some read the code point names
// aloud instead.
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // symbols & pictographs
	{0x1F680, 0x1F6FF}, // transport & map
	{0x1F1E0, 0x1F1FF}, // regional indicators / flags
}

// stripEmojis removes emoji code points from text.
func stripEmojis(s string) string {
	return strings.Map(func(r rune) rune {
		for _, rng := range emojiRanges {
			if r >= rng[0] && r <= rng[1] {
				return -1
			}
		}
		return r
	}, s)
}

// annotation matches whisper environmental annotations like
// "(keyboard clicking)", "[laughter]", "(speaking French)".
var annotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z\s_]*[\)\]]`)

// Known whisper hallucinations on silent audio. Matched against the
// whole (lowercased) transcript.
var hallucinations = map[string]bool{
	"...":                  true,
	"you":                  true,
	"thank you.":           true,
	"thanks for watching!": true,
	"bye.":                 true,
	"the end.":             true,
}

// scrubTranscript normalizes whitespace and drops whisper artifacts
// (silence markers, environmental annotations, hallucinated filler).
// Returns "" when nothing meaningful remains.
func scrubTranscript(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	s = annotation.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	if hallucinations[strings.ToLower(s)] {
		return ""
	}
	return s
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

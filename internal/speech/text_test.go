package speech

import "testing"

func TestScrubTranscript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "open my chats", "open my chats"},
		{"whitespace collapsed", "  hello\n\n world \r\n", "hello world"},
		{"annotation stripped", "(keyboard clicking) delete chat two", "delete chat two"},
		{"bracket annotation", "[laughter] I feel better", "I feel better"},
		{"hallucination dropped", "Thank you.", ""},
		{"silence marker", "(silence)", ""},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scrubTranscript(tt.in); got != tt.want {
				t.Fatalf("scrubTranscript(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

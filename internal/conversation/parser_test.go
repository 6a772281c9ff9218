package conversation

import (
	"testing"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	p := NewKeywordParser(logger.New(logger.LevelOff, nil))

	tests := []struct {
		input   string
		want    domain.IntentType
		payload string
	}{
		{"chats", domain.IntentListChats, ""},
		{"LIST", domain.IntentListChats, ""},
		{"3", domain.IntentOpenChat, "3"},
		{"12", domain.IntentOpenChat, "12"},
		{"new", domain.IntentNewChat, ""},
		{"new chat", domain.IntentNewChat, ""},
		{"delete 2", domain.IntentDeleteChat, "2"},
		{"remove 1", domain.IntentDeleteChat, "1"},
		{"recs", domain.IntentRecommend, ""},
		{"recommendations", domain.IntentRecommend, ""},
		{"login", domain.IntentLogin, ""},
		{"login me@example.com hunter2", domain.IntentLogin, "me@example.com hunter2"},
		{"signup me@example.com hunter2", domain.IntentSignUp, "me@example.com hunter2"},
		{"logout", domain.IntentLogout, ""},
		{"whoami", domain.IntentWhoAmI, ""},
		{"mic", domain.IntentMic, ""},
		{"mute", domain.IntentMute, ""},
		{"hush", domain.IntentHush, ""},
		{"shhh", domain.IntentHush, ""},
		{"help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},
		{"quit", domain.IntentQuit, ""},
		{"I had a rough day at work", domain.IntentSay, "I had a rough day at work"},
		{"delete everything I said about my job", domain.IntentSay, "delete everything I said about my job"},
		{"2024 was a hard year", domain.IntentSay, "2024 was a hard year"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := p.Parse(tt.input)
			if got.Type != tt.want {
				t.Fatalf("Parse(%q).Type = %s, want %s", tt.input, got.Type, tt.want)
			}
			if got.Payload != tt.payload {
				t.Fatalf("Parse(%q).Payload = %q, want %q", tt.input, got.Payload, tt.payload)
			}
		})
	}
}

func TestKeywordParserEmptyInput(t *testing.T) {
	p := NewKeywordParser(logger.New(logger.LevelOff, nil))
	got := p.Parse("   ")
	if got.Type != domain.IntentSay || got.Payload != "" {
		t.Fatalf("Parse(blank) = %+v, want empty say intent", got)
	}
}

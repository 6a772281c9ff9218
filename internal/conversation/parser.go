// Package conversation provides intent parsing and user notification
// implementations for the terminal shell.
package conversation

import (
	"regexp"
	"strings"

	"github.com/echosoul/echosoul/internal/domain"
	"github.com/echosoul/echosoul/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to commands using keywords and
// simple patterns. Anything that isn't a command is a message for the
// current chat.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex   *regexp.Regexp
	intent  domain.IntentType
	payload bool // carry the text after the keyword as payload
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regex: regexp.MustCompile(`(?i)^(chats|list|sessions)$`), intent: domain.IntentListChats},
		{regex: regexp.MustCompile(`(?i)^(new|new chat|start over)$`), intent: domain.IntentNewChat},
		// Deletion takes a chat number only; "delete" followed by prose
		// is a message, not a command.
		{regex: regexp.MustCompile(`(?i)^(delete|del|remove)\s+(\d+)$`), intent: domain.IntentDeleteChat, payload: true},
		{regex: regexp.MustCompile(`(?i)^(recs|recommend|recommendations|suggestions)$`), intent: domain.IntentRecommend},
		{regex: regexp.MustCompile(`(?i)^login(\s+.*)?$`), intent: domain.IntentLogin, payload: true},
		{regex: regexp.MustCompile(`(?i)^(signup|sign up|register)(\s+.*)?$`), intent: domain.IntentSignUp, payload: true},
		{regex: regexp.MustCompile(`(?i)^(logout|sign out)$`), intent: domain.IntentLogout},
		{regex: regexp.MustCompile(`(?i)^(whoami|who am i)$`), intent: domain.IntentWhoAmI},
		{regex: regexp.MustCompile(`(?i)^(mic|listen|voice)$`), intent: domain.IntentMic},
		{regex: regexp.MustCompile(`(?i)^(mute|stop listening)$`), intent: domain.IntentMute},
		{regex: regexp.MustCompile(`(?i)^(hush|quiet|stop talking|shh+)$`), intent: domain.IntentHush},
		{regex: regexp.MustCompile(`(?i)^(help|h|\?)$`), intent: domain.IntentHelp},
		{regex: regexp.MustCompile(`(?i)^(quit|exit|q|bye)$`), intent: domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent. Bare numbers open the
// numbered chat from the last listing; everything unmatched is sent to
// the backend as a message.
func (p *KeywordParser) Parse(input string) *domain.Intent {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentSay}
	}

	if len(trimmed) <= 3 && isDigits(trimmed) {
		return &domain.Intent{Type: domain.IntentOpenChat, Payload: trimmed}
	}

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("parser: matched %s", rule.intent)
		intent := &domain.Intent{Type: rule.intent}
		if rule.payload {
			intent.Payload = strings.TrimSpace(m[len(m)-1])
		}
		return intent
	}

	return &domain.Intent{Type: domain.IntentSay, Payload: trimmed}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

package domain

// IntentType enumerates what the user asked the client to do.
type IntentType int

const (
	// IntentSay — free text to send to the current chat.
	IntentSay IntentType = iota
	IntentListChats
	IntentOpenChat
	IntentNewChat
	IntentDeleteChat
	IntentRecommend
	IntentLogin
	IntentSignUp
	IntentLogout
	IntentWhoAmI
	IntentMic
	IntentMute
	IntentHush
	IntentHelp
	IntentQuit
)

// String returns a short name for logging.
func (t IntentType) String() string {
	switch t {
	case IntentSay:
		return "say"
	case IntentListChats:
		return "list-chats"
	case IntentOpenChat:
		return "open-chat"
	case IntentNewChat:
		return "new-chat"
	case IntentDeleteChat:
		return "delete-chat"
	case IntentRecommend:
		return "recommend"
	case IntentLogin:
		return "login"
	case IntentSignUp:
		return "signup"
	case IntentLogout:
		return "logout"
	case IntentWhoAmI:
		return "whoami"
	case IntentMic:
		return "mic"
	case IntentMute:
		return "mute"
	case IntentHush:
		return "hush"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent is a parsed user command. Payload carries the argument text
// for intents that take one (chat number, credentials, message text).
type Intent struct {
	Type    IntentType
	Payload string
}

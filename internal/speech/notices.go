package speech

// User-facing notices around voice input. Kept in one place so the
// wording stays consistent between the recognizer and the app shell.

// NoticeVoiceUnavailable is shown when the capability is absent or the
// recognizer has permanently disabled itself.
func NoticeVoiceUnavailable() string {
	return "Speech recognition is currently unavailable. Please type your message instead."
}

// NoticeListening is shown when a recognition session starts.
func NoticeListening() string {
	return "Listening... speak now, or type 'mute' to stop."
}

package history

// #region summary
// Summary is the per-turn context bundle the server hands to the prompt
// pipeline alongside the raw student message.
type Summary struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
	MessageCount   int    `json:"message_count"`
	RecentHistory  string `json:"recent_history"`
	Intent         Intent `json:"student_intent"`
	CurrentMessage string `json:"current_message"`
	FirstMessage   bool   `json:"is_first_message"`
}

// BuildSummary bundles the recent window with the reading of the current
// message. messageCount is the conversation's total before this turn, which
// can exceed the window; the excess is compressed into the history's topic
// line.
func BuildSummary(conversationID, title string, messageCount int, w *Window, currentMessage string) Summary {
	return Summary{
		ConversationID: conversationID,
		Title:          title,
		MessageCount:   messageCount,
		RecentHistory:  w.Summarize(messageCount),
		Intent:         ExtractIntent(currentMessage),
		CurrentMessage: currentMessage,
		FirstMessage:   messageCount == 0,
	}
}

// #endregion summary

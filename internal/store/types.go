package store

import (
	"encoding/json"
	"time"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/history"
)

// #region conversation
// Conversation is a chat thread between one student and the tutor.
type Conversation struct {
	ID        string    `json:"conversation_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationSummary pairs a conversation with its last message preview for
// thread listings.
type ConversationSummary struct {
	Conversation
	LastMessagePreview string `json:"last_message_preview"`
}

// #endregion conversation

// #region message
// Message is a single stored turn. MetaJSON carries the per-message metadata
// blob (validation outcome for tutor turns) as opaque JSON, stored verbatim
// and emitted inline on the API.
type Message struct {
	ID             string          `json:"message_id"`
	ConversationID string          `json:"conversation_id"`
	Role           history.Role    `json:"role"`
	Content        string          `json:"content"`
	MetaJSON       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// #endregion message

// #region audit
// AuditEntry is one row of the validation audit log: the orchestrator outcome
// behind a stored tutor turn.
type AuditEntry struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	Passed         bool      `json:"passed"`
	Attempts       int       `json:"attempts"`
	Confidence     float64   `json:"confidence"`
	Reason         string    `json:"reason,omitempty"`
	FinalAnswer    bool      `json:"final_answer"`
	FallbackUsed   bool      `json:"fallback_used"`
	CreatedAt      time.Time `json:"created_at"`
}

// #endregion audit

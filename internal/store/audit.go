package store

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-validation
// LogValidation writes one orchestrator outcome to the validation_audit table.
func (s *Store) LogValidation(entry AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO validation_audit
		 (conversation_id, message_id, passed, attempts, confidence, reason, final_answer, fallback_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ConversationID,
		entry.MessageID,
		boolToInt(entry.Passed),
		entry.Attempts,
		entry.Confidence,
		nullIfEmpty(entry.Reason),
		boolToInt(entry.FinalAnswer),
		boolToInt(entry.FallbackUsed),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log validation: %w", err)
	}
	return nil
}

// #endregion log-validation

// #region validation-history
// ValidationHistory returns the newest audit rows for a thread, most recent
// first.
func (s *Store) ValidationHistory(conversationID string, limit int) ([]AuditEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, message_id, passed, attempts, confidence, reason, final_answer, fallback_used, created_at
		 FROM validation_audit WHERE conversation_id = ?
		 ORDER BY id DESC LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("validation history: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var passed, finalAnswer, fallbackUsed int
		var reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.MessageID, &passed, &e.Attempts,
			&e.Confidence, &reason, &finalAnswer, &fallbackUsed, &createdStr); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		e.Passed = passed != 0
		e.FinalAnswer = finalAnswer != 0
		e.FallbackUsed = fallbackUsed != 0
		if reason.Valid {
			e.Reason = reason.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion validation-history

// #region helpers
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers

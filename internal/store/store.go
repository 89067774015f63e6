// Package store persists conversations, messages and the validation audit
// log in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/history"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	conversation_id TEXT PRIMARY KEY,
	title           TEXT,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_updated
ON conversations(updated_at DESC);

CREATE TABLE IF NOT EXISTS messages (
	message_id      TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	meta_json       TEXT,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
ON messages(conversation_id, created_at);

CREATE TABLE IF NOT EXISTS validation_audit (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL,
	message_id      TEXT NOT NULL,
	passed          INTEGER NOT NULL,
	attempts        INTEGER NOT NULL,
	confidence      REAL NOT NULL,
	reason          TEXT,
	final_answer    INTEGER NOT NULL DEFAULT 0,
	fallback_used   INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (message_id) REFERENCES messages(message_id)
);
`

// #endregion schema

// #region store-struct
// Store manages the tutoring database.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region title
// previewLen is the truncation length shared by titles and list previews.
const previewLen = 50

// TitleFor derives a conversation title from its first student message.
func TitleFor(content string) string {
	r := []rune(content)
	long := len(r) > previewLen
	t := content
	if long {
		t = string(r[:previewLen])
	}
	t = strings.TrimSpace(t)
	if long {
		t += "..."
	}
	if t == "" {
		return "Untitled Thread"
	}
	return t
}

func preview(content string) string {
	r := []rune(content)
	if len(r) <= previewLen {
		return content
	}
	return string(r[:previewLen]) + "..."
}

// #endregion title

// #region conversations
// CreateConversation inserts a new thread. An empty id draws a fresh UUID.
func (s *Store) CreateConversation(id, title string) (Conversation, error) {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	conv := Conversation{ID: id, Title: title, CreatedAt: now, UpdatedAt: now}

	_, err := s.db.Exec(
		`INSERT INTO conversations (conversation_id, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		id, nullIfEmpty(title), now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Conversation{}, fmt.Errorf("insert conversation: %w", err)
	}
	return conv, nil
}

// GetConversation retrieves a thread by id. Not-found surfaces as a wrapped
// sql.ErrNoRows.
func (s *Store) GetConversation(id string) (Conversation, error) {
	var conv Conversation
	var title sql.NullString
	var createdStr, updatedStr string

	err := s.db.QueryRow(
		`SELECT conversation_id, title, created_at, updated_at
		 FROM conversations WHERE conversation_id = ?`, id,
	).Scan(&conv.ID, &title, &createdStr, &updatedStr)
	if err != nil {
		return Conversation{}, fmt.Errorf("get conversation %s: %w", id, err)
	}

	if title.Valid {
		conv.Title = title.String
	}
	conv.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	conv.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return conv, nil
}

// EnsureConversation fetches a thread, creating it with the given title when
// it does not exist yet. Reports whether a new thread was created.
func (s *Store) EnsureConversation(id, title string) (Conversation, bool, error) {
	conv, err := s.GetConversation(id)
	if err == nil {
		return conv, false, nil
	}
	if !IsNotFound(err) {
		return Conversation{}, false, err
	}
	conv, err = s.CreateConversation(id, title)
	if err != nil {
		return Conversation{}, false, err
	}
	return conv, true, nil
}

// ListConversations returns the most recently active threads with their last
// message previews.
func (s *Store) ListConversations(limit int) ([]ConversationSummary, error) {
	rows, err := s.db.Query(
		`SELECT conversation_id, title, created_at, updated_at
		 FROM conversations ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []ConversationSummary
	for rows.Next() {
		var conv Conversation
		var title sql.NullString
		var createdStr, updatedStr string
		if err := rows.Scan(&conv.ID, &title, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		if title.Valid {
			conv.Title = title.String
		}
		conv.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		conv.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
		summaries = append(summaries, ConversationSummary{Conversation: conv})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range summaries {
		var content string
		err := s.db.QueryRow(
			`SELECT content FROM messages WHERE conversation_id = ?
			 ORDER BY created_at DESC LIMIT 1`, summaries[i].ID,
		).Scan(&content)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("last message for %s: %w", summaries[i].ID, err)
		}
		summaries[i].LastMessagePreview = preview(content)
	}
	return summaries, nil
}

// DeleteConversation removes a thread and, through the cascade, its messages.
func (s *Store) DeleteConversation(id string) error {
	res, err := s.db.Exec(`DELETE FROM conversations WHERE conversation_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("conversation %s not found: %w", id, sql.ErrNoRows)
	}
	return nil
}

// #endregion conversations

// #region messages
// SaveMessage inserts a turn and bumps the thread's updated_at atomically.
// An empty message id draws a fresh UUID; the stored message is returned.
func (s *Store) SaveMessage(msg Message) (Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Message{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO messages (message_id, conversation_id, role, content, meta_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, string(msg.Role), msg.Content,
		nullIfEmpty(string(msg.MetaJSON)), msg.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE conversations SET updated_at = ? WHERE conversation_id = ?`,
		msg.CreatedAt.Format(time.RFC3339Nano), msg.ConversationID,
	)
	if err != nil {
		return Message{}, fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Message{}, fmt.Errorf("commit: %w", err)
	}
	return msg, nil
}

// HasMessage reports whether a message id is already stored.
func (s *Store) HasMessage(id string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE message_id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check message: %w", err)
	}
	return n > 0, nil
}

// ListMessages returns every turn of a thread in chronological order.
func (s *Store) ListMessages(conversationID string) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT message_id, conversation_id, role, content, meta_json, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, message_id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// RecentMessages returns the trailing limit turns in chronological order.
func (s *Store) RecentMessages(conversationID string, limit int) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT message_id, conversation_id, role, content, meta_json, created_at
		 FROM messages WHERE conversation_id = ?
		 ORDER BY created_at DESC, message_id DESC LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// CountMessages reports how many turns a thread holds.
func (s *Store) CountMessages(conversationID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// RecentWindow loads the trailing turns into a history window sized to limit.
func (s *Store) RecentWindow(conversationID string, limit int) (*history.Window, error) {
	msgs, err := s.RecentMessages(conversationID, limit)
	if err != nil {
		return nil, err
	}
	w := history.NewWindow(limit)
	for _, m := range msgs {
		w.Append(history.Entry{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	return w, nil
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var msgs []Message
	for rows.Next() {
		var msg Message
		var role string
		var meta sql.NullString
		var createdStr string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &meta, &createdStr); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = history.Role(role)
		if meta.Valid {
			msg.MetaJSON = json.RawMessage(meta.String)
		}
		msg.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// #endregion messages

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// #endregion helpers

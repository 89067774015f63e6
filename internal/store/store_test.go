package store

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/history"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func saveTurn(t *testing.T, s *Store, convID string, role history.Role, content string, at time.Time) Message {
	t.Helper()
	msg, err := s.SaveMessage(Message{
		ConversationID: convID,
		Role:           role,
		Content:        content,
		CreatedAt:      at,
	})
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	return msg
}

func TestCreateAndGetConversation(t *testing.T) {
	s := tempStore(t)

	conv, err := s.CreateConversation("", "2x + 5 = 13")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("expected generated conversation id")
	}

	got, err := s.GetConversation(conv.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.Title != "2x + 5 = 13" {
		t.Errorf("expected title round-trip, got %q", got.Title)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps set")
	}
}

func TestGetConversationNotFound(t *testing.T) {
	s := tempStore(t)

	_, err := s.GetConversation("missing")
	if err == nil {
		t.Fatal("expected error for missing conversation")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestEnsureConversation(t *testing.T) {
	s := tempStore(t)

	conv, created, err := s.EnsureConversation("conv-1", "first message title")
	if err != nil {
		t.Fatalf("EnsureConversation: %v", err)
	}
	if !created {
		t.Error("expected new conversation")
	}

	again, created, err := s.EnsureConversation("conv-1", "a different title")
	if err != nil {
		t.Fatalf("EnsureConversation: %v", err)
	}
	if created {
		t.Error("expected existing conversation")
	}
	if again.Title != conv.Title {
		t.Errorf("expected original title kept, got %q", again.Title)
	}
}

func TestSaveMessageBumpsConversation(t *testing.T) {
	s := tempStore(t)
	conv, _ := s.CreateConversation("conv-1", "t")

	later := conv.UpdatedAt.Add(3 * time.Second)
	saveTurn(t, s, conv.ID, history.RoleStudent, "help me", later)

	got, err := s.GetConversation(conv.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("expected updated_at %v, got %v", later, got.UpdatedAt)
	}
}

func TestHasMessage(t *testing.T) {
	s := tempStore(t)
	conv, _ := s.CreateConversation("conv-1", "t")
	msg := saveTurn(t, s, conv.ID, history.RoleStudent, "hi", time.Now().UTC())

	ok, err := s.HasMessage(msg.ID)
	if err != nil {
		t.Fatalf("HasMessage: %v", err)
	}
	if !ok {
		t.Error("expected stored message found")
	}

	ok, err = s.HasMessage("nope")
	if err != nil {
		t.Fatalf("HasMessage: %v", err)
	}
	if ok {
		t.Error("expected unknown id not found")
	}
}

func TestListAndRecentMessages(t *testing.T) {
	s := tempStore(t)
	conv, _ := s.CreateConversation("conv-1", "t")

	base := time.Now().UTC()
	contents := []string{"2x + 5 = 13", "What comes first?", "subtract 5", "What do you get?"}
	for i, c := range contents {
		role := history.RoleStudent
		if i%2 == 1 {
			role = history.RoleTutor
		}
		saveTurn(t, s, conv.ID, role, c, base.Add(time.Duration(i)*time.Second))
	}

	all, err := s.ListMessages(conv.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(all))
	}
	if all[0].Content != contents[0] || all[3].Content != contents[3] {
		t.Errorf("expected chronological order, got %v", all)
	}
	if all[1].Role != history.RoleTutor {
		t.Errorf("expected tutor role, got %q", all[1].Role)
	}

	recent, err := s.RecentMessages(conv.ID, 2)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(recent))
	}
	if recent[0].Content != contents[2] || recent[1].Content != contents[3] {
		t.Errorf("expected trailing turns oldest-first, got %v", recent)
	}
}

func TestRecentWindow(t *testing.T) {
	s := tempStore(t)
	conv, _ := s.CreateConversation("conv-1", "t")

	base := time.Now().UTC()
	saveTurn(t, s, conv.ID, history.RoleStudent, "2x = 8", base)
	saveTurn(t, s, conv.ID, history.RoleTutor, "What do you divide by?", base.Add(time.Second))
	saveTurn(t, s, conv.ID, history.RoleStudent, "by 2", base.Add(2*time.Second))

	w, err := s.RecentWindow(conv.ID, 2)
	if err != nil {
		t.Fatalf("RecentWindow: %v", err)
	}
	if w.Len() != 2 {
		t.Fatalf("expected window of 2, got %d", w.Len())
	}
	want := "Tutor: What do you divide by?\nStudent: by 2"
	if got := w.Format(); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestCountMessages(t *testing.T) {
	s := tempStore(t)
	conv, _ := s.CreateConversation("conv-1", "t")

	n, err := s.CountMessages(conv.ID)
	if err != nil {
		t.Fatalf("CountMessages: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0, got %d", n)
	}

	saveTurn(t, s, conv.ID, history.RoleStudent, "hi", time.Now().UTC())
	if n, _ = s.CountMessages(conv.ID); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	s := tempStore(t)
	conv, _ := s.CreateConversation("conv-1", "t")
	saveTurn(t, s, conv.ID, history.RoleStudent, "hi", time.Now().UTC())

	if err := s.DeleteConversation(conv.ID); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}

	if _, err := s.GetConversation(conv.ID); !IsNotFound(err) {
		t.Errorf("expected conversation gone, got %v", err)
	}
	n, err := s.CountMessages(conv.ID)
	if err != nil {
		t.Fatalf("CountMessages: %v", err)
	}
	if n != 0 {
		t.Errorf("expected cascade delete, %d messages remain", n)
	}

	if err := s.DeleteConversation(conv.ID); err == nil {
		t.Error("expected error deleting twice")
	}
}

func TestListConversations(t *testing.T) {
	s := tempStore(t)

	older, _ := s.CreateConversation("conv-old", "old thread")
	newer, _ := s.CreateConversation("conv-new", "new thread")

	base := time.Now().UTC()
	saveTurn(t, s, older.ID, history.RoleStudent, "hello", base)
	long := strings.Repeat("a", 60)
	saveTurn(t, s, newer.ID, history.RoleStudent, long, base.Add(time.Minute))

	got, err := s.ListConversations(10)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(got))
	}
	if got[0].ID != newer.ID {
		t.Errorf("expected most recently active first, got %s", got[0].ID)
	}
	if got[0].LastMessagePreview != strings.Repeat("a", 50)+"..." {
		t.Errorf("expected truncated preview, got %q", got[0].LastMessagePreview)
	}
	if got[1].LastMessagePreview != "hello" {
		t.Errorf("expected short preview untouched, got %q", got[1].LastMessagePreview)
	}
}

func TestListConversationsWithoutMessages(t *testing.T) {
	s := tempStore(t)
	s.CreateConversation("conv-empty", "empty")

	got, err := s.ListConversations(10)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(got) != 1 || got[0].LastMessagePreview != "" {
		t.Errorf("expected empty preview, got %+v", got)
	}
}

func TestMessageMetaRoundTrip(t *testing.T) {
	s := tempStore(t)
	conv, _ := s.CreateConversation("conv-1", "t")

	msg, err := s.SaveMessage(Message{
		ConversationID: conv.ID,
		Role:           history.RoleTutor,
		Content:        "What operation comes first?",
		MetaJSON:       json.RawMessage(`{"validation_passed":true,"attempts":1}`),
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}

	all, _ := s.ListMessages(conv.ID)
	if all[0].ID != msg.ID {
		t.Fatalf("expected stored message, got %+v", all)
	}
	if string(all[0].MetaJSON) != `{"validation_passed":true,"attempts":1}` {
		t.Errorf("expected metadata round-trip, got %q", all[0].MetaJSON)
	}
}

func TestTitleFor(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "help with fractions", "help with fractions"},
		{"exactly fifty", strings.Repeat("b", 50), strings.Repeat("b", 50)},
		{"truncated", strings.Repeat("c", 51), strings.Repeat("c", 50) + "..."},
		{"padded", "  2x + 5 = 13  ", "2x + 5 = 13"},
		{"empty", "", "Untitled Thread"},
		{"whitespace only", "   ", "Untitled Thread"},
		{"long whitespace head", strings.Repeat(" ", 55) + "x", "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TitleFor(tc.content); got != tc.want {
				t.Errorf("TitleFor(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}

// Package history maintains the bounded conversation window injected into
// tutor prompts.
package history

import (
	"fmt"
	"strings"
	"time"
)

// #region roles
// Role identifies the author of a conversation turn.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleSystem  Role = "system"
)

// Label renders the role for prompt context lines.
func (r Role) Label() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// #endregion roles

// #region window
// DefaultWindowSize bounds how many recent turns a window retains.
const DefaultWindowSize = 10

// summaryTurns is how many trailing turns the per-turn summary renders.
const summaryTurns = 5

// Entry is one stored conversation turn.
type Entry struct {
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Window holds the most recent turns of one conversation, oldest first.
// Appending beyond the bound drops the oldest entry.
type Window struct {
	max     int
	entries []Entry
}

// NewWindow creates a window. max <= 0 selects DefaultWindowSize.
func NewWindow(max int) *Window {
	if max <= 0 {
		max = DefaultWindowSize
	}
	return &Window{max: max}
}

// Append adds a turn, evicting the oldest when the window is full.
func (w *Window) Append(e Entry) {
	w.entries = append(w.entries, e)
	if len(w.entries) > w.max {
		w.entries = w.entries[len(w.entries)-w.max:]
	}
}

// Len reports how many turns the window currently holds.
func (w *Window) Len() int { return len(w.entries) }

// Entries returns a copy of the window contents, oldest first.
func (w *Window) Entries() []Entry {
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// #endregion window

// #region formatting
// Format renders every window turn as "Role: content" lines, oldest first.
func (w *Window) Format() string {
	return w.FormatLast(len(w.entries))
}

// FormatLast renders the trailing n turns. Returns "" for an empty window.
func (w *Window) FormatLast(n int) string {
	if n > len(w.entries) {
		n = len(w.entries)
	}
	if n <= 0 {
		return ""
	}
	lines := make([]string, 0, n)
	for _, e := range w.entries[len(w.entries)-n:] {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Role.Label(), e.Content))
	}
	return strings.Join(lines, "\n")
}

// Summarize renders the trailing turns for prompt injection. total is the
// conversation's full stored message count; turns that fall outside the
// rendered tail are compressed into one bracketed line naming the running
// topic.
func (w *Window) Summarize(total int) string {
	tail := w.FormatLast(summaryTurns)

	rendered := min(summaryTurns, len(w.entries))
	if total <= rendered {
		return tail
	}

	earlier := fmt.Sprintf("[Earlier: %d more messages", total-rendered)
	if topic := w.Topic(); topic != "" {
		earlier += " about " + topic
	}
	earlier += "]"

	if tail == "" {
		return earlier
	}
	return earlier + "\n" + tail
}

// #endregion formatting

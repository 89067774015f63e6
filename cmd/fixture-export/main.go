package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/history"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/replay"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/store"
)

// acceptingVerdict is the judge reply scripted after each recorded tutor
// draft. The store keeps only the reply that was served, not the judge
// call that approved it, so the export reconstructs an approving verdict
// in the judge's JSON shape.
const acceptingVerdict = `{"is_direct_answer": false, "reason": "recorded reply accepted during the original session", "confidence": 0.9}`

// #region main

func main() {
	dbPath := flag.String("db", "", "path to tutor.db")
	conversationID := flag.String("conversation", "", "conversation to export (default: most recent)")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/tutor.db --out path/to/fixture.json [--conversation id]")
		os.Exit(2)
	}

	if err := run(*dbPath, *conversationID, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, conversationID, outPath string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	if conversationID == "" {
		summaries, err := st.ListConversations(1)
		if err != nil {
			return fmt.Errorf("list conversations: %w", err)
		}
		if len(summaries) == 0 {
			return fmt.Errorf("no conversations in %s", dbPath)
		}
		conversationID = summaries[0].ID
	}

	conv, err := st.GetConversation(conversationID)
	if err != nil {
		return fmt.Errorf("get conversation: %w", err)
	}

	messages, err := st.ListMessages(conversationID)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	if len(messages) == 0 {
		return fmt.Errorf("conversation %s has no messages", conversationID)
	}

	audits, err := st.ValidationHistory(conversationID, len(messages))
	if err != nil {
		return fmt.Errorf("validation history: %w", err)
	}
	auditByMessage := make(map[string]store.AuditEntry, len(audits))
	for _, a := range audits {
		auditByMessage[a.MessageID] = a
	}

	fixture := buildFixture(conv, messages, auditByMessage)
	if len(fixture.Turns) == 0 {
		return fmt.Errorf("conversation %s has no completed turns", conversationID)
	}

	return writeFixture(fixture, outPath)
}

// buildFixture pairs each student message with the tutor reply that
// followed it and scripts that reply as the turn's draft.
//
// Final-answer turns script the reply alone, since acknowledgments skip
// validation. Every other turn appends an approving judge verdict after
// the draft. Expectations come from the audit rows: a fallback turn gets
// none, because the drafts the rules rejected were never stored and the
// served canned question replays as an ordinary accepted reply. A
// recorded attempt count above one is dropped for the same reason.
func buildFixture(conv store.Conversation, messages []store.Message, audits map[string]store.AuditEntry) replay.Fixture {
	var turns []replay.FixtureTurn
	var expected []replay.FixtureExpectedResult

	var pendingStudent string
	havePending := false
	for _, msg := range messages {
		if msg.Role == history.RoleStudent {
			pendingStudent = msg.Content
			havePending = true
			continue
		}
		if !havePending {
			continue
		}
		havePending = false

		turnID := fmt.Sprintf("t%d", len(turns)+1)
		audit, audited := audits[msg.ID]
		isFinal := audited && audit.FinalAnswer

		replies := []string{msg.Content}
		if !isFinal {
			replies = append(replies, acceptingVerdict)
		}
		turns = append(turns, replay.FixtureTurn{
			TurnID:       turnID,
			Student:      pendingStudent,
			ModelReplies: replies,
		})

		if !audited || audit.FallbackUsed {
			continue
		}
		exp := replay.FixtureExpectedResult{
			TurnID:  turnID,
			Outcome: replay.OutcomeAccepted,
		}
		if isFinal {
			exp.Outcome = replay.OutcomeFinalAnswer
		}
		if audit.Attempts == 1 {
			exp.Attempts = 1
		}
		expected = append(expected, exp)
	}

	return replay.Fixture{
		Description: fmt.Sprintf("Exported session %q (%d turns)", conv.Title, len(turns)),
		Config: replay.FixtureConfig{
			MaxRetries: guard.DefaultMaxRetries,
		},
		Turns:           turns,
		ExpectedResults: expected,
	}
}

// #endregion extract

// #region output

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d turns)\n", outPath, len(data), len(fixture.Turns))
	return nil
}

// #endregion output

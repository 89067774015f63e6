package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/history"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/logging"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/replay"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to tutor.db (DB mode)")
	conversation := flag.String("conversation", "", "limit DB mode to one conversation id")
	last := flag.Int("last", 20, "number of recent conversations to scan in DB mode")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/session.json")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/tutor.db [--conversation id] [--last N]")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *conversation, *last)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	logger := logging.New(os.Stderr, logging.Config{Level: "warn", Format: "text"})
	h := replay.NewHarness(f.Config, logger)
	outcomes := h.Replay(context.Background(), f)

	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	return printComparison(outcomes)
}

// printComparison outputs the per-turn table and returns the exit code.
func printComparison(outcomes []replay.TurnOutcome) int {
	fmt.Printf("%-12s| %-15s| %-15s| %s\n", "Turn", "Expected", "Replayed", "Match")
	fmt.Printf("%-12s+%-16s+%-16s+%s\n",
		"------------", "----------------", "----------------", "------")

	diverged := 0
	for _, o := range outcomes {
		expected := "-"
		match := "-"
		if o.Expected != nil {
			expected = o.Expected.Outcome
			if o.Mismatch == "" {
				match = "OK"
			} else {
				match = "DIFF"
				diverged++
			}
		}
		fmt.Printf("%-12s| %-15s| %-15s| %s\n", o.TurnID, expected, o.Outcome, match)
		if o.Mismatch != "" {
			fmt.Printf("%-12s|   %s\n", "", o.Mismatch)
		}
	}

	s := replay.Summarize(outcomes)
	fmt.Printf("\nSummary: %d turns, %d accepted, %d fallbacks, %d final answers, %d diverge\n",
		s.TotalTurns, s.Accepted, s.Fallbacks, s.FinalAnswers, diverged)

	if diverged > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode

// #region db-mode

// scanRow is one stored tutor reply re-validated under the current rules.
type scanRow struct {
	ConversationID string
	MessageID      string
	Stored         string // accepted | fallback | -
	RulesNow       string // accept | reject
	Reason         string
}

// runDBMode re-validates stored tutor replies against the current rule
// stage. Fallback turns are skipped: their stored content is the canned
// question, not the draft the rules rejected. A stored-accepted reply the
// rules now reject signals validation drift.
func runDBMode(dbPath, conversationID string, last int) int {
	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	var ids []string
	if conversationID != "" {
		ids = []string{conversationID}
	} else {
		summaries, err := st.ListConversations(last)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list conversations: %v\n", err)
			return 2
		}
		for _, s := range summaries {
			ids = append(ids, s.ID)
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "no conversations found")
		return 2
	}

	logger := logging.New(os.Stderr, logging.Config{Level: "warn", Format: "text"})
	validator := guard.NewValidator(llm.NewMock(""), logger)

	var rows []scanRow
	skipped := 0
	for _, id := range ids {
		convRows, convSkipped, err := scanConversation(st, validator, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scan %s: %v\n", id, err)
			return 2
		}
		rows = append(rows, convRows...)
		skipped += convSkipped
	}

	return printScan(rows, skipped)
}

// scanConversation re-runs the rule stage over one conversation's tutor
// replies, pairing each with its audit row when one exists.
func scanConversation(st *store.Store, validator *guard.Validator, conversationID string) ([]scanRow, int, error) {
	messages, err := st.ListMessages(conversationID)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}

	audits, err := st.ValidationHistory(conversationID, len(messages))
	if err != nil {
		return nil, 0, fmt.Errorf("validation history: %w", err)
	}
	auditByMessage := make(map[string]store.AuditEntry, len(audits))
	for _, a := range audits {
		auditByMessage[a.MessageID] = a
	}

	var rows []scanRow
	skipped := 0
	lastStudent := ""
	for _, msg := range messages {
		if msg.Role == history.RoleStudent {
			lastStudent = msg.Content
			continue
		}

		stored := "-"
		if audit, ok := auditByMessage[msg.ID]; ok {
			if audit.FallbackUsed {
				skipped++
				continue
			}
			if audit.Passed {
				stored = "accepted"
			} else {
				stored = "fallback"
			}
		}

		// Rule stage only: no judge, no model calls, fully deterministic.
		verdict := validator.Validate(context.Background(), lastStudent, msg.Content, false)
		rulesNow := "accept"
		reason := ""
		if !verdict.IsValid {
			rulesNow = "reject"
			reason = verdict.Reason
		}

		rows = append(rows, scanRow{
			ConversationID: conversationID,
			MessageID:      msg.ID,
			Stored:         stored,
			RulesNow:       rulesNow,
			Reason:         reason,
		})
	}
	return rows, skipped, nil
}

func printScan(rows []scanRow, skipped int) int {
	fmt.Printf("%-10s  %-10s  %-10s  %-8s  %s\n", "Conv", "Message", "Stored", "Rules", "Match")
	fmt.Printf("%-10s  %-10s  %-10s  %-8s  %s\n",
		"----------", "----------", "----------", "--------", "------")

	drifted := 0
	for _, r := range rows {
		match := "OK"
		if r.Stored == "accepted" && r.RulesNow == "reject" {
			match = "DIFF"
			drifted++
		}
		fmt.Printf("%-10s  %-10s  %-10s  %-8s  %s\n",
			shortID(r.ConversationID), shortID(r.MessageID), r.Stored, r.RulesNow, match)
		if match == "DIFF" && r.Reason != "" {
			fmt.Printf("            %s\n", r.Reason)
		}
	}

	fmt.Printf("\nSummary: %d replies checked, %d fallback turns skipped, %d drifted\n",
		len(rows), skipped, drifted)

	if drifted > 0 {
		return 1
	}
	return 0
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion db-mode

package replay

import (
	"context"
	"strings"
	"testing"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/answer"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
)

// #region harness-tests

const acceptVerdict = `{"is_direct_answer": false, "reason": "guiding question", "confidence": 0.9}`

func TestReplay_CarriesWindowAcrossTurns(t *testing.T) {
	f := &Fixture{
		Turns: []FixtureTurn{
			{
				TurnID:       "t1",
				Student:      "Can you help me solve x + 4 = 10?",
				ModelReplies: []string{"What might you subtract from both sides?", acceptVerdict},
			},
			{
				TurnID:       "t2",
				Student:      "I tried subtracting but got stuck",
				ModelReplies: []string{"Where exactly did you get stuck?", acceptVerdict},
			},
		},
	}

	h := NewHarness(FixtureConfig{}, quietLogger())
	outcomes := h.Replay(context.Background(), f)
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	requests := h.mock.Requests()
	if len(requests) != 4 {
		t.Fatalf("expected 4 model calls, got %d", len(requests))
	}

	// Turn two's generation prompt sees turn one, not itself.
	prompt := requests[2].Prompt
	if !strings.Contains(prompt, "Previous conversation:") {
		t.Error("second turn prompt missing history block")
	}
	if !strings.Contains(prompt, "Student: Can you help me solve x + 4 = 10?") {
		t.Error("second turn prompt missing first student message")
	}
	if got := strings.Count(prompt, "I tried subtracting but got stuck"); got != 1 {
		t.Errorf("current message appears %d times in prompt, want 1", got)
	}

	firstPrompt := requests[0].Prompt
	if !strings.Contains(firstPrompt, "START of a new conversation") {
		t.Error("first turn prompt missing conversation-start framing")
	}
}

func TestReplay_TurnsWithoutExpectationsSkipComparison(t *testing.T) {
	f := &Fixture{
		Turns: []FixtureTurn{
			{
				TurnID:       "t1",
				Student:      "Can you help me factor x^2 - 4?",
				ModelReplies: []string{"Which two numbers multiply to -4?", acceptVerdict},
			},
		},
	}

	h := NewHarness(FixtureConfig{}, quietLogger())
	outcomes := h.Replay(context.Background(), f)
	if outcomes[0].Expected != nil {
		t.Error("expected nil expectation for unrecorded turn")
	}
	if outcomes[0].Mismatch != "" {
		t.Errorf("unexpected mismatch %q", outcomes[0].Mismatch)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		result guard.TurnResult
		want   string
	}{
		{"accepted", guard.TurnResult{ValidationPassed: true}, OutcomeAccepted},
		{"fallback", guard.TurnResult{ValidationPassed: false, Attempts: 3}, OutcomeFallback},
		{"final answer", guard.TurnResult{ValidationPassed: true, IsFinalAnswer: true}, OutcomeFinalAnswer},
		{"final answer generation failure", guard.TurnResult{ValidationPassed: false, IsFinalAnswer: true}, OutcomeFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.result); got != tc.want {
				t.Errorf("classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	correct := true
	accepted := TurnOutcome{
		Outcome: OutcomeAccepted,
		Result:  guard.TurnResult{ValidationPassed: true, Attempts: 2},
	}
	final := TurnOutcome{
		Outcome: OutcomeFinalAnswer,
		Result:  guard.TurnResult{ValidationPassed: true, IsFinalAnswer: true, Attempts: 1},
		Check:   &answer.Check{Correct: false},
	}

	if got := compare(accepted, FixtureExpectedResult{Outcome: OutcomeAccepted, Attempts: 2}); got != "" {
		t.Errorf("matching expectation reported %q", got)
	}
	if got := compare(accepted, FixtureExpectedResult{Outcome: OutcomeFallback}); got == "" {
		t.Error("outcome mismatch not reported")
	}
	if got := compare(accepted, FixtureExpectedResult{Outcome: OutcomeAccepted, Attempts: 1}); got == "" {
		t.Error("attempts mismatch not reported")
	}
	if got := compare(final, FixtureExpectedResult{Correct: &correct}); got == "" {
		t.Error("correctness mismatch not reported")
	}
	if got := compare(accepted, FixtureExpectedResult{Correct: &correct}); got == "" {
		t.Error("missing answer check not reported")
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []TurnOutcome{
		{Outcome: OutcomeAccepted},
		{Outcome: OutcomeAccepted, Mismatch: "attempts 2, expected 1"},
		{Outcome: OutcomeFallback},
		{Outcome: OutcomeFinalAnswer},
	}

	s := Summarize(outcomes)
	if s.TotalTurns != 4 {
		t.Errorf("TotalTurns = %d, want 4", s.TotalTurns)
	}
	if s.Accepted != 2 || s.Fallbacks != 1 || s.FinalAnswers != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.Mismatches != 1 {
		t.Errorf("Mismatches = %d, want 1", s.Mismatches)
	}
}

// #endregion harness-tests

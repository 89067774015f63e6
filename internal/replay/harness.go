// Package replay runs recorded tutoring sessions through the live pipeline
// with scripted model replies, so guard behavior can be checked offline and
// regressions pinned to a fixture.
package replay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/answer"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/history"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/symbolic"
)

// #region types

// Outcome labels for one replayed turn.
const (
	OutcomeAccepted    = "accepted"
	OutcomeFallback    = "fallback"
	OutcomeFinalAnswer = "final_answer"
)

// TurnOutcome captures the pipeline's behavior for one replayed turn.
type TurnOutcome struct {
	TurnID   string
	Student  string
	Response string
	Outcome  string
	Result   guard.TurnResult

	// Check is set when the turn was classified as a final answer.
	Check *answer.Check

	// Expected is the fixture's expectation, nil when none was recorded.
	// Mismatch describes the first divergence, empty when the turn matched.
	Expected *FixtureExpectedResult
	Mismatch string
}

// Summary aggregates a replay run.
type Summary struct {
	TotalTurns   int
	Accepted     int
	Fallbacks    int
	FinalAnswers int
	Mismatches   int
}

// #endregion types

// #region harness

// Harness drives the full tutoring pipeline against a scripted model,
// entirely in memory.
type Harness struct {
	detector  *detect.Detector
	engine    *symbolic.Engine
	checker   *answer.Checker
	extractor *answer.Extractor
	orch      *guard.Orchestrator
	mock      *llm.Mock
}

// NewHarness wires a pipeline for the given guard settings. A nil logger
// uses the process default.
func NewHarness(cfg FixtureConfig, logger *slog.Logger) *Harness {
	engine := symbolic.NewEngine()
	mock := llm.NewMock("(unscripted reply)")
	validator := guard.NewValidator(mock, logger)
	return &Harness{
		detector:  detect.NewDetector(cfg.MinConfidence),
		engine:    engine,
		checker:   answer.NewChecker(engine),
		extractor: answer.NewExtractor(engine),
		orch:      guard.NewOrchestrator(mock, validator, cfg.MaxRetries, logger),
		mock:      mock,
	}
}

// Replay runs every fixture turn through detection, math summary,
// final-answer checking, and guarded generation, carrying the conversation
// window across turns the way the server does between requests.
func (h *Harness) Replay(ctx context.Context, f *Fixture) []TurnOutcome {
	window := history.NewWindow(history.DefaultWindowSize)
	outcomes := make([]TurnOutcome, 0, len(f.Turns))
	total := 0

	for _, ft := range f.Turns {
		for _, reply := range ft.ModelReplies {
			h.mock.Enqueue(reply)
		}

		// Snapshot before appending, matching the live turn ordering.
		conversationContext := window.Summarize(total)

		det := h.detector.Detect(ft.Student)
		mathCtx := guard.SummarizeMath(det, h.engine, h.checker)

		var check *answer.Check
		var isCorrect *bool
		if h.orch.DetectFinalAnswer(ft.Student, mathCtx) {
			result := h.extractor.CheckAnswer(ft.Student, conversationContext)
			check = &result
			isCorrect = &result.Correct
		}

		result := h.orch.GenerateValidated(ctx, guard.Turn{
			StudentMessage:  ft.Student,
			Context:         conversationContext,
			Math:            mathCtx,
			IsCorrectAnswer: isCorrect,
		})

		window.Append(history.Entry{Role: history.RoleStudent, Content: ft.Student})
		window.Append(history.Entry{Role: history.RoleTutor, Content: result.Response})
		total += 2

		out := TurnOutcome{
			TurnID:   ft.TurnID,
			Student:  ft.Student,
			Response: result.Response,
			Outcome:  classify(result),
			Result:   result,
			Check:    check,
		}
		if exp, ok := f.Expectation(ft.TurnID); ok {
			out.Expected = &exp
			out.Mismatch = compare(out, exp)
		}
		outcomes = append(outcomes, out)
	}

	return outcomes
}

// classify maps a turn result onto one outcome label. Every non-passing
// result is a fallback, since the orchestrator only withholds the passed
// flag when it substituted the canned question.
func classify(r guard.TurnResult) string {
	switch {
	case !r.ValidationPassed:
		return OutcomeFallback
	case r.IsFinalAnswer:
		return OutcomeFinalAnswer
	default:
		return OutcomeAccepted
	}
}

// compare reports the first divergence between a turn and its expectation.
func compare(out TurnOutcome, exp FixtureExpectedResult) string {
	if exp.Outcome != "" && out.Outcome != exp.Outcome {
		return fmt.Sprintf("outcome %s, expected %s", out.Outcome, exp.Outcome)
	}
	if exp.Attempts > 0 && out.Result.Attempts != exp.Attempts {
		return fmt.Sprintf("attempts %d, expected %d", out.Result.Attempts, exp.Attempts)
	}
	if exp.Correct != nil {
		if out.Check == nil {
			return "expected an answer check, turn was not a final answer"
		}
		if out.Check.Correct != *exp.Correct {
			return fmt.Sprintf("answer correct=%t, expected %t", out.Check.Correct, *exp.Correct)
		}
	}
	return ""
}

// Summarize computes aggregate stats from replay outcomes.
func Summarize(outcomes []TurnOutcome) Summary {
	s := Summary{TotalTurns: len(outcomes)}
	for _, o := range outcomes {
		switch o.Outcome {
		case OutcomeAccepted:
			s.Accepted++
		case OutcomeFallback:
			s.Fallbacks++
		case OutcomeFinalAnswer:
			s.FinalAnswers++
		}
		if o.Mismatch != "" {
			s.Mismatches++
		}
	}
	return s
}

// #endregion harness

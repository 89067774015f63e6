package guard

import (
	"context"
	"strings"
	"testing"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
)

const judgeAccepts = `{"is_direct_answer": false, "reason": "pure guiding question", "confidence": 0.9}`

func newTestOrchestrator(gen, judge llm.Client) *Orchestrator {
	return NewOrchestrator(gen, NewValidator(judge, discardLogger()), 0, discardLogger())
}

func inFallbackPool(s string) bool {
	for _, q := range fallbackQuestions {
		if s == q {
			return true
		}
	}
	return false
}

// #region generate-tests
func TestGenerateValidated_FirstAttemptPasses(t *testing.T) {
	gen := llm.NewMock("  What do you think comes next?  ")
	judge := llm.NewMock(judgeAccepts)
	o := newTestOrchestrator(gen, judge)

	res := o.GenerateValidated(context.Background(), Turn{StudentMessage: "help me with 2x + 5 = 13"})
	if !res.ValidationPassed {
		t.Fatalf("expected pass, got %+v", res)
	}
	if res.Response != "What do you think comes next?" {
		t.Errorf("expected trimmed response, got %q", res.Response)
	}
	if res.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", res.Attempts)
	}
	if res.Confidence != 0.9 || res.Reason != "pure guiding question" {
		t.Errorf("expected judge verdict fields, got %+v", res)
	}
	if res.IsFinalAnswer {
		t.Error("expected non-final turn")
	}

	reqs := gen.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 generation call, got %d", len(reqs))
	}
	if reqs[0].Temperature != llm.DefaultTemperature {
		t.Errorf("expected generation temperature %v, got %v", llm.DefaultTemperature, reqs[0].Temperature)
	}
	if reqs[0].MaxTokens != generateMaxTokens {
		t.Errorf("expected generation max tokens %d, got %d", generateMaxTokens, reqs[0].MaxTokens)
	}
}

func TestGenerateValidated_RetriesRejectedDrafts(t *testing.T) {
	gen := llm.NewMock("").
		Enqueue("The answer is 7.").
		Enqueue("x = 7").
		Enqueue("Could you check both sides of the equation?")
	judge := llm.NewMock(judgeAccepts)
	o := newTestOrchestrator(gen, judge)

	res := o.GenerateValidated(context.Background(), Turn{StudentMessage: "so what is x?"})
	if !res.ValidationPassed {
		t.Fatalf("expected eventual pass, got %+v", res)
	}
	if res.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", res.Attempts)
	}
	if res.Response != "Could you check both sides of the equation?" {
		t.Errorf("unexpected response %q", res.Response)
	}

	reqs := gen.Requests()
	if len(reqs) != 3 {
		t.Fatalf("expected 3 generation calls, got %d", len(reqs))
	}
	if !strings.HasPrefix(reqs[0].Prompt, "You are a Socratic math tutor") {
		t.Error("expected no emphasis on first attempt")
	}
	if !strings.HasPrefix(reqs[1].Prompt, "IMPORTANT: ") {
		t.Error("expected IMPORTANT emphasis on second attempt")
	}
	if !strings.HasPrefix(reqs[2].Prompt, "CRITICAL: ") {
		t.Error("expected CRITICAL emphasis on third attempt")
	}

	// The first two drafts are confidently rejected by rules alone.
	if got := len(judge.Requests()); got != 1 {
		t.Errorf("expected 1 judge call, got %d", got)
	}
}

func TestGenerateValidated_FallbackAfterMaxRetries(t *testing.T) {
	gen := llm.NewMock("The answer is 5.")
	judge := llm.NewMock(judgeAccepts)
	o := newTestOrchestrator(gen, judge)

	res := o.GenerateValidated(context.Background(), Turn{StudentMessage: "tell me the answer"})
	if res.ValidationPassed {
		t.Fatalf("expected fallback, got %+v", res)
	}
	if res.Attempts != DefaultMaxRetries {
		t.Errorf("expected %d attempts, got %d", DefaultMaxRetries, res.Attempts)
	}
	if res.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", res.Confidence)
	}
	if res.Reason != "Used fallback after max retries" {
		t.Errorf("unexpected reason %q", res.Reason)
	}
	if !inFallbackPool(res.Response) {
		t.Errorf("expected a fallback question, got %q", res.Response)
	}
	if got := len(gen.Requests()); got != DefaultMaxRetries {
		t.Errorf("expected %d generation calls, got %d", DefaultMaxRetries, got)
	}
}

func TestGenerateValidated_GenerationFailureFallsBack(t *testing.T) {
	gen := llm.NewMock("").EnqueueError(llm.ErrNetwork)
	judge := llm.NewMock(judgeAccepts)
	o := newTestOrchestrator(gen, judge)

	res := o.GenerateValidated(context.Background(), Turn{StudentMessage: "help"})
	if res.ValidationPassed {
		t.Fatalf("expected fallback, got %+v", res)
	}
	if res.Attempts != 1 {
		t.Errorf("expected failure on first attempt, got %d", res.Attempts)
	}
	if res.Reason != reasonGenerationFailed {
		t.Errorf("unexpected reason %q", res.Reason)
	}
	if !inFallbackPool(res.Response) {
		t.Errorf("expected a fallback question, got %q", res.Response)
	}
	if got := len(gen.Requests()); got != 1 {
		t.Errorf("expected no retries after a generation failure, got %d calls", got)
	}
	if got := len(judge.Requests()); got != 0 {
		t.Errorf("expected no judge calls, got %d", got)
	}
}

func TestGenerateValidated_SkipsValidationForFinalAnswer(t *testing.T) {
	yes := true
	gen := llm.NewMock("Excellent! You solved it. Want to try a harder one?")
	judge := llm.NewMock(judgeAccepts)
	o := newTestOrchestrator(gen, judge)

	turn := Turn{
		StudentMessage:  "x = 4",
		Context:         "Student: 2x = 8\nTutor: What do you divide both sides by?",
		IsCorrectAnswer: &yes,
	}
	res := o.GenerateValidated(context.Background(), turn)
	if !res.ValidationPassed {
		t.Fatalf("expected pass, got %+v", res)
	}
	if res.Attempts != 1 || res.Confidence != 1.0 {
		t.Errorf("expected single unscored attempt, got %+v", res)
	}
	if res.Reason != "Validation skipped for acknowledgment response" {
		t.Errorf("unexpected reason %q", res.Reason)
	}
	if !res.IsFinalAnswer {
		t.Error("expected final-answer turn")
	}
	if got := len(judge.Requests()); got != 0 {
		t.Errorf("expected no judge calls, got %d", got)
	}
	if !strings.Contains(gen.Requests()[0].Prompt, "CORRECT final answer") {
		t.Error("expected celebration instructions in prompt")
	}
}

func TestGenerateValidated_IncorrectFinalAnswerPrompt(t *testing.T) {
	no := false
	gen := llm.NewMock("Close! What happens if you plug your value back in?")
	judge := llm.NewMock(judgeAccepts)
	o := newTestOrchestrator(gen, judge)

	turn := Turn{
		StudentMessage:  "x = 5",
		Context:         "Student: 2x = 8\nTutor: What do you divide both sides by?",
		IsCorrectAnswer: &no,
	}
	res := o.GenerateValidated(context.Background(), turn)
	if !res.ValidationPassed {
		t.Fatalf("expected pass, got %+v", res)
	}
	if !strings.Contains(gen.Requests()[0].Prompt, "INCORRECT final answer") {
		t.Error("expected correction instructions in prompt")
	}
}

func TestGenerateValidated_FinalAnswerGenerationFailure(t *testing.T) {
	yes := true
	gen := llm.NewMock("").EnqueueError(llm.ErrTimeout)
	judge := llm.NewMock(judgeAccepts)
	o := newTestOrchestrator(gen, judge)

	turn := Turn{
		StudentMessage:  "x = 4",
		Context:         "Student: 2x = 8",
		IsCorrectAnswer: &yes,
	}
	res := o.GenerateValidated(context.Background(), turn)
	if res.ValidationPassed {
		t.Fatalf("expected fallback, got %+v", res)
	}
	if res.Attempts != 1 || res.Reason != reasonGenerationFailed {
		t.Errorf("unexpected fallback result %+v", res)
	}
	if !res.IsFinalAnswer {
		t.Error("expected final-answer turn")
	}
	if !inFallbackPool(res.Response) {
		t.Errorf("expected a fallback question, got %q", res.Response)
	}
}

// #endregion generate-tests

// #region final-answer-tests
func TestDetectFinalAnswer(t *testing.T) {
	o := newTestOrchestrator(llm.NewMock(""), llm.NewMock(""))

	shortEq := &MathContext{
		Detected: true,
		Expressions: []MathExpression{
			{Original: "2x=4", Type: detect.TypeEquation},
		},
	}

	cases := []struct {
		name    string
		message string
		math    *MathContext
		want    bool
	}{
		{name: "variable assignment", message: "x = 5", want: true},
		{name: "uppercase variable", message: "X = 5", want: true},
		{name: "bare integer", message: "  42  ", want: true},
		{name: "negative decimal", message: "-3.5", want: true},
		{name: "question", message: "what is x?", want: false},
		{name: "trailing question mark", message: "x = 5?", want: false},
		{name: "prose with number", message: "5 apples", want: false},
		{name: "short equation with context", message: "so 2x=4", math: shortEq, want: true},
		{name: "short equation without context", message: "so 2x=4", want: false},
		{name: "long message with context", message: "the full equation i got was 2x=4 in the end", math: shortEq, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := o.DetectFinalAnswer(tc.message, tc.math)
			if got != tc.want {
				t.Errorf("DetectFinalAnswer(%q) = %v, expected %v", tc.message, got, tc.want)
			}
		})
	}
}

// #endregion final-answer-tests

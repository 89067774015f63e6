package guard

import (
	"context"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
)

// #region constants
// DefaultMaxRetries is the generation attempt budget for one student turn.
const DefaultMaxRetries = 3

const generateMaxTokens = 200

const reasonGenerationFailed = "Generation failed, used fallback question"

// #endregion constants

// #region orchestrator
// Orchestrator drives the generate, validate, retry, fallback loop that
// produces the tutor reply for each student turn.
type Orchestrator struct {
	client     llm.Client
	validator  *Validator
	maxRetries int
	logger     *slog.Logger
}

// NewOrchestrator wires an orchestrator. maxRetries <= 0 selects the default.
func NewOrchestrator(client llm.Client, validator *Validator, maxRetries int, logger *slog.Logger) *Orchestrator {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client:     client,
		validator:  validator,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// #endregion orchestrator

// #region generate-validated
// GenerateValidated produces the tutor reply for one student turn.
//
// Acknowledgment turns (IsCorrectAnswer non-nil) skip validation entirely:
// the rules exist to stop answer leaks during guided solving, and confirming
// an answer the student already produced is not a leak. Any generation
// failure degrades to a canned fallback question instead of an error.
func (o *Orchestrator) GenerateValidated(ctx context.Context, turn Turn) TurnResult {
	isFinal := turn.IsCorrectAnswer != nil

	if isFinal {
		response, err := o.generate(ctx, turn, 1)
		if err != nil {
			o.logger.Warn("generation failed, using fallback question", "error", err)
			return o.fallbackResult(1, isFinal, reasonGenerationFailed)
		}
		return TurnResult{
			Response:         response,
			ValidationPassed: true,
			Attempts:         1,
			Confidence:       1.0,
			Reason:           "Validation skipped for acknowledgment response",
			IsFinalAnswer:    true,
		}
	}

	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		response, err := o.generate(ctx, turn, attempt)
		if err != nil {
			o.logger.Warn("generation failed, using fallback question", "attempt", attempt, "error", err)
			return o.fallbackResult(attempt, isFinal, reasonGenerationFailed)
		}

		verdict := o.validator.Validate(ctx, turn.StudentMessage, response, true)
		if verdict.IsValid {
			return TurnResult{
				Response:         response,
				ValidationPassed: true,
				Attempts:         attempt,
				Confidence:       verdict.Confidence,
				Reason:           verdict.Reason,
				IsFinalAnswer:    isFinal,
			}
		}
		o.logger.Warn("response failed validation",
			"attempt", attempt, "reason", verdict.Reason, "confidence", verdict.Confidence)
	}

	return o.fallbackResult(o.maxRetries, isFinal, "Used fallback after max retries")
}

// generate runs one attempt through the backend.
func (o *Orchestrator) generate(ctx context.Context, turn Turn, attempt int) (string, error) {
	text, err := o.client.Complete(ctx, llm.Request{
		Prompt:      buildPrompt(turn, attempt),
		Temperature: llm.DefaultTemperature,
		MaxTokens:   generateMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// fallbackResult draws a canned Socratic question from the fixed pool.
func (o *Orchestrator) fallbackResult(attempts int, isFinal bool, reason string) TurnResult {
	return TurnResult{
		Response:         fallbackQuestions[rand.Intn(len(fallbackQuestions))],
		ValidationPassed: false,
		Attempts:         attempts,
		Confidence:       1.0,
		Reason:           reason,
		IsFinalAnswer:    isFinal,
	}
}

// #endregion generate-validated

// #region final-answer
var questionIndicators = []string{"what", "how", "why", "when", "where", "which", "who", "?"}

var (
	finalAnswerRe    = regexp.MustCompile(`^[a-z]\s*=\s*-?\d+(\.\d+)?$`)
	bareFinalValueRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// shortMessageRunes bounds how long a message can be while still reading as
// a bare final answer.
const shortMessageRunes = 15

// DetectFinalAnswer reports whether the message states a final answer rather
// than asking for help. Long messages never count: length correlates with
// asking, not answering.
func (o *Orchestrator) DetectFinalAnswer(message string, mathCtx *MathContext) bool {
	lower := strings.ToLower(strings.TrimSpace(message))

	for _, q := range questionIndicators {
		if strings.Contains(lower, q) {
			return false
		}
	}

	if finalAnswerRe.MatchString(lower) || bareFinalValueRe.MatchString(lower) {
		return true
	}

	// A short message restating a short detected equation reads as an answer.
	if utf8.RuneCountInString(lower) < shortMessageRunes && mathCtx != nil && mathCtx.Detected {
		for _, expr := range mathCtx.Expressions {
			original := strings.ToLower(expr.Original)
			if expr.Type == detect.TypeEquation && strings.Contains(original, "=") &&
				utf8.RuneCountInString(original) < shortMessageRunes {
				return true
			}
		}
	}

	return false
}

// #endregion final-answer

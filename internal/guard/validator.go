package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
)

// #region constants
const (
	judgeTemperature = 0.1
	judgeMaxTokens   = 150
)

// #endregion constants

// #region validator
// Validator decides whether a candidate tutor response discloses an answer.
// The rule stage always runs; the judge is a second opinion from the
// generation backend and is only consulted when the rules are not already
// confident in a rejection.
type Validator struct {
	client llm.Client
	logger *slog.Logger
}

// NewValidator creates a validator judging through the given client.
func NewValidator(client llm.Client, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{client: client, logger: logger}
}

// Validate classifies the candidate. With useJudge set, the rule verdict is
// combined with the judge's; the rule stage remains the availability floor
// whenever the judge fails.
func (v *Validator) Validate(ctx context.Context, studentMessage, candidate string, useJudge bool) Verdict {
	rule := v.ruleVerdict(candidate)

	// A confident rule rejection stands on its own.
	if !rule.IsValid && rule.Confidence > 0.8 {
		v.logger.Info("rule validation rejected response", "reason", rule.Reason)
		return rule
	}

	if useJudge {
		judge, err := v.judgeVerdict(ctx, studentMessage, candidate)
		if err != nil {
			v.logger.Warn("judge validation failed, falling back to rules", "error", err)
			return rule
		}

		if !judge.IsValid && judge.Confidence > 0.7 {
			return judge
		}
		if !rule.IsValid && !judge.IsValid {
			return Verdict{
				IsValid:    false,
				Reason:     "Both validators rejected: " + judge.Reason,
				Confidence: (rule.Confidence + judge.Confidence) / 2,
			}
		}
		if judge.IsValid && judge.Confidence > 0.7 {
			return judge
		}
	}

	return rule
}

// #endregion validator

// #region rule-stage
// ruleVerdict runs the offline checks over the lowercased candidate.
func (v *Validator) ruleVerdict(candidate string) Verdict {
	lower := strings.ToLower(candidate)

	acknowledging := false
	for _, re := range acknowledgmentPhrases {
		if re.MatchString(lower) {
			acknowledging = true
			break
		}
	}

	for _, re := range directAnswerPatterns {
		if re.MatchString(lower) {
			return Verdict{
				Reason:     fmt.Sprintf("Matched pattern: %s", re.String()),
				Confidence: 0.9,
			}
		}
	}

	if !acknowledging {
		for _, re := range givingAnswerPatterns {
			if re.MatchString(lower) {
				return Verdict{
					Reason:     fmt.Sprintf("Tutor is giving answer: %s", re.String()),
					Confidence: 0.9,
				}
			}
		}
	}

	keywords := 0
	for _, kw := range directAnswerKeywords {
		if strings.Contains(lower, kw) {
			keywords++
		}
	}

	// Acknowledgments tolerate more answer-flavored vocabulary.
	if acknowledging {
		if keywords >= 5 {
			return Verdict{
				Reason:     fmt.Sprintf("Too many direct answer keywords even with acknowledgment (%d)", keywords),
				Confidence: 0.7,
			}
		}
		return Verdict{
			IsValid:    true,
			Reason:     "Acknowledgment response with acceptable keywords",
			Confidence: 0.8,
		}
	}

	if keywords >= 3 {
		return Verdict{
			Reason:     fmt.Sprintf("Too many direct answer keywords (%d)", keywords),
			Confidence: 0.8,
		}
	}
	if keywords == 2 {
		return Verdict{
			IsValid:    true,
			Reason:     fmt.Sprintf("Some keywords but likely acceptable (%d)", keywords),
			Confidence: 0.5,
		}
	}
	return Verdict{
		IsValid:    true,
		Reason:     "No obvious direct answer patterns detected",
		Confidence: 0.7,
	}
}

// #endregion rule-stage

// #region judge-stage
type judgeReply struct {
	IsDirectAnswer bool     `json:"is_direct_answer"`
	Reason         string   `json:"reason"`
	Confidence     *float64 `json:"confidence"`
}

// judgeVerdict asks the backend for a JSON verdict at low temperature.
// A malformed reply counts as an inconclusive accept, not a failure.
func (v *Validator) judgeVerdict(ctx context.Context, studentMessage, candidate string) (Verdict, error) {
	text, err := v.client.Complete(ctx, llm.Request{
		Prompt:      fmt.Sprintf(judgePromptTemplate, studentMessage, candidate),
		Temperature: judgeTemperature,
		MaxTokens:   judgeMaxTokens,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("judge call: %w", err)
	}

	var reply judgeReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		v.logger.Warn("judge reply was not valid JSON", "reply", text)
		return Verdict{IsValid: true, Reason: "Validation inconclusive", Confidence: 0.3}, nil
	}

	reason := reply.Reason
	if reason == "" {
		reason = "No reason provided"
	}
	confidence := 0.5
	if reply.Confidence != nil {
		confidence = *reply.Confidence
	}
	return Verdict{IsValid: !reply.IsDirectAnswer, Reason: reason, Confidence: confidence}, nil
}

// #endregion judge-stage

// Package guard keeps the tutor Socratic. A rule stage and an optional
// second-opinion judge classify every candidate response, and the
// orchestrator drives the generate-validate-retry loop that produces the
// final tutor message for a student turn.
package guard

import (
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
)

// #region verdict
// Verdict is one validator decision over a candidate tutor response.
type Verdict struct {
	IsValid    bool    `json:"is_valid"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// #endregion verdict

// #region turn
// Turn is one student message plus the context the orchestrator needs to
// answer it.
type Turn struct {
	StudentMessage string
	// Context is the formatted prior conversation, empty on a first turn.
	Context string
	// Math carries CAS analysis of the student message, nil when none.
	Math *MathContext
	// IsCorrectAnswer is non-nil once the turn has been classified as a
	// final answer: true for a correct one, false for an incorrect one.
	IsCorrectAnswer *bool
}

// TurnResult is the orchestrator's outcome for one student turn.
type TurnResult struct {
	Response         string  `json:"response"`
	ValidationPassed bool    `json:"validation_passed"`
	Attempts         int     `json:"attempts"`
	Confidence       float64 `json:"confidence"`
	Reason           string  `json:"reason"`
	IsFinalAnswer    bool    `json:"is_final_answer"`
}

// #endregion turn

// #region math-context
// MathContext is the CAS summary injected into prompts and consulted by
// final-answer detection.
type MathContext struct {
	Detected    bool             `json:"detected"`
	Expressions []MathExpression `json:"expressions"`
}

// MathExpression is the analysis of a single detected expression.
type MathExpression struct {
	Original   string          `json:"original"`
	Type       detect.ExprType `json:"type"`
	Simplified string          `json:"simplified,omitempty"`
	Solutions  []string        `json:"solutions,omitempty"`
	Steps      []string        `json:"steps,omitempty"`
}

// #endregion math-context

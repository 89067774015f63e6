// Package detect finds mathematical expressions in free-form student text
// using an ordered table of scored patterns. Detection is pure: no model
// calls, no state, just regex matching with context-sensitive confidence.
package detect

// #region expr-type

// ExprType classifies a detected expression.
type ExprType string

const (
	TypeEquation        ExprType = "equation"         // x + 5 = 10
	TypeExpression      ExprType = "expression"       // 2x + 3x
	TypeNumerical       ExprType = "numerical"        // 5 + 3 * 2
	TypeAnswerStatement ExprType = "answer_statement" // x = 5
	TypeInequality      ExprType = "inequality"       // x > 5
	TypeUnknown         ExprType = "unknown"
)

// #endregion

// #region match

// Match is one detected expression with its position in the source text.
// Start and End are byte offsets of the trimmed match.
type Match struct {
	Text       string   `json:"text"`
	Type       ExprType `json:"type"`
	Pattern    string   `json:"pattern_name"`
	Confidence float64  `json:"confidence"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
}

// #endregion

// #region result

// DetectionResult is the full outcome of scanning one message.
type DetectionResult struct {
	HasMath     bool     `json:"has_math"`
	Confidence  float64  `json:"confidence"`
	Matches     []Match  `json:"expressions"`
	OverallType ExprType `json:"overall_type,omitempty"`
	Patterns    []string `json:"detected_patterns"`
	TextLength  int      `json:"text_length"`
}

// ExpressionsForCas returns the matched texts worth handing to the symbolic
// engine, in source order. Empty when no math was detected.
func (r DetectionResult) ExpressionsForCas() []string {
	if !r.HasMath {
		return nil
	}
	out := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		switch m.Type {
		case TypeEquation, TypeAnswerStatement, TypeExpression, TypeNumerical, TypeInequality:
			out = append(out, m.Text)
		}
	}
	return out
}

// #endregion

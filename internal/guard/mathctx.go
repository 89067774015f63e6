package guard

import (
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/answer"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/symbolic"
)

// #region summarize
// SummarizeMath runs the symbolic engine over every detected expression and
// packages the results for prompt injection. Equations get solved and turned
// into a hint plan, plain expressions get simplified. Returns nil when the
// text had no math.
func SummarizeMath(det detect.DetectionResult, engine *symbolic.Engine, checker *answer.Checker) *MathContext {
	if !det.HasMath {
		return nil
	}

	mc := &MathContext{Detected: true}
	for _, m := range det.Matches {
		expr := MathExpression{Original: m.Text, Type: m.Type}

		switch m.Type {
		case detect.TypeEquation, detect.TypeAnswerStatement:
			if sr := engine.Solve(m.Text, ""); sr.Success && sr.Solvable {
				expr.Solutions = sr.Solutions
			}
			if plan := checker.SolutionSteps(m.Text, ""); plan.Solvable {
				expr.Steps = plan.Steps
			}
		case detect.TypeExpression, detect.TypeNumerical:
			if res := engine.Simplify(m.Text); res.Success && res.Value != m.Text {
				expr.Simplified = res.Value
			}
		case detect.TypeInequality:
			// no inequality solver; the raw text still informs the prompt
		default:
			continue
		}

		mc.Expressions = append(mc.Expressions, expr)
	}
	return mc
}

// #endregion summarize

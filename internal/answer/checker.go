package answer

// #region imports
import (
	"fmt"
	"math"
	"strings"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/algebra"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/symbolic"
)

// #endregion

// #region checker

// Checker validates a student's answer against a known expected form.
type Checker struct {
	engine *symbolic.Engine
}

// NewChecker returns a checker backed by the given symbolic engine.
func NewChecker(engine *symbolic.Engine) *Checker {
	return &Checker{engine: engine}
}

// #endregion

// #region validate

// Validate compares the student's answer with the expected one. Both are
// simplified first; equivalence is symbolic where variables remain and
// numeric within Tolerance otherwise. context is the problem statement,
// carried for symmetry with the orchestrator call but not consulted.
func (c *Checker) Validate(studentAnswer, expectedAnswer, context string) Verdict {
	_ = context

	student, err := algebra.Parse(studentAnswer)
	if err != nil {
		return Verdict{
			StudentAnswer:  studentAnswer,
			ExpectedAnswer: expectedAnswer,
			Explanation:    fmt.Sprintf("Could not understand your answer: %v", err),
		}
	}
	expected, err := algebra.Parse(expectedAnswer)
	if err != nil {
		return Verdict{
			StudentAnswer:  studentAnswer,
			ExpectedAnswer: expectedAnswer,
			Explanation:    "There was an error checking your answer. Please try again.",
		}
	}

	studentText := symbolic.Simplified(student)
	expectedText := symbolic.Simplified(expected)

	correct, approximate := equivalent(student, expected)

	return Verdict{
		Correct:        correct,
		StudentAnswer:  studentText,
		ExpectedAnswer: expectedText,
		Explanation:    explanation(correct, approximate, studentText, expectedText),
		Approximate:    approximate,
	}
}

// equivalent reports whether two expressions denote the same value. The
// second result marks a numeric match within Tolerance rather than an
// exact symbolic one.
func equivalent(student, expected algebra.Expr) (bool, bool) {
	diff := algebra.Expand(algebra.Plus(student, algebra.Neg(expected)))
	if n, isNum := diff.(*algebra.Num); isNum && n.IsZero() {
		return true, false
	}
	if len(algebra.FreeVars(diff)) > 0 {
		// Variables remain: the forms must agree as algebraic objects.
		return algebra.Expand(student).Equal(algebra.Expand(expected)), false
	}
	if v, evaluable := diff.Eval(); evaluable && math.Abs(v) < Tolerance {
		return true, true
	}
	return false, false
}

func explanation(correct, approximate bool, studentText, expectedText string) string {
	switch {
	case correct && approximate:
		return "Approximately correct! Your answer is very close."
	case correct:
		return "Correct! Well done."
	default:
		return fmt.Sprintf("Not quite. Your answer simplifies to %s, but the expected answer is %s. Try again!", studentText, expectedText)
	}
}

// #endregion

// #region multiple-forms

// ValidateAny accepts the answer if it matches any listed valid form,
// returning the first matching verdict.
func (c *Checker) ValidateAny(studentAnswer string, validForms []string) Verdict {
	for _, expected := range validForms {
		if v := c.Validate(studentAnswer, expected, ""); v.Correct {
			return v
		}
	}
	return Verdict{
		StudentAnswer:  studentAnswer,
		ExpectedAnswer: strings.Join(validForms, " or "),
		Explanation:    fmt.Sprintf("Not quite. The answer should be one of: %s", strings.Join(validForms, ", ")),
	}
}

// #endregion

// #region solution-steps

// SolutionSteps builds the factor-then-solve hint plan for an equation.
// The variable defaults to "x" when empty.
func (c *Checker) SolutionSteps(equation, variable string) SolutionSteps {
	if variable == "" {
		variable = symbolic.DefaultVariable
	}

	residual, err := c.engine.Residual(equation)
	if err != nil {
		return SolutionSteps{Err: fmt.Sprintf("failed to parse equation: %v", err), Steps: []string{}}
	}

	out := algebra.SolveFor(residual, variable)
	if out.Kind != algebra.SolveRoots || len(out.Roots) == 0 {
		return SolutionSteps{Err: symbolic.MsgNoSolution, Steps: []string{}}
	}

	var steps []string
	if factored, changed := algebra.Factor(residual, variable); changed {
		steps = append(steps, fmt.Sprintf("Factor: %s = 0", factored))
	}

	solutions := make([]string, len(out.Roots))
	for i, r := range out.Roots {
		solutions[i] = r.String()
	}
	if len(solutions) == 1 {
		steps = append(steps, fmt.Sprintf("Solution: %s = %s", variable, solutions[0]))
	} else {
		parts := make([]string, len(solutions))
		for i, s := range solutions {
			parts[i] = fmt.Sprintf("%s = %s", variable, s)
		}
		steps = append(steps, fmt.Sprintf("Solutions: %s", strings.Join(parts, " or ")))
	}

	return SolutionSteps{Solvable: true, Solutions: solutions, Steps: steps}
}

// #endregion

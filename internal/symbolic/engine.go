// Package symbolic wraps the algebra kernel behind a uniformly-erroring
// facade: every operation takes expression text and returns a Result, so
// callers never handle parse errors or panics from malformed student input.
package symbolic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/algebra"
)

// #region engine

// DefaultVariable is assumed when an equation does not say what to solve for.
const DefaultVariable = "x"

// healthExpr is parsed and factored by Health; factoring it exercises the
// parser, the normalizer, and the root finder in one call.
const healthExpr = "x^2 + 2*x + 1"

// Engine is the stateless symbolic computation facade. The zero value is
// usable; NewEngine exists for symmetry with the other service constructors.
type Engine struct{}

// NewEngine returns a new symbolic engine.
func NewEngine() *Engine { return &Engine{} }

// #endregion engine

// #region operations

// Parse checks that the input is a well-formed expression and returns its
// normalized rendering.
func (e *Engine) Parse(expr string) Result {
	parsed, err := algebra.Parse(expr)
	if err != nil {
		return fail(fmt.Sprintf("failed to parse expression: %v", err))
	}
	return ok(parsed.String())
}

// Simplify normalizes the expression and returns the simpler of the
// collected and fully-expanded forms.
func (e *Engine) Simplify(expr string) Result {
	parsed, err := algebra.Parse(expr)
	if err != nil {
		return fail(fmt.Sprintf("failed to simplify expression: %v", err))
	}
	return ok(Simplified(parsed))
}

// Simplified renders the shorter of the normalized and expanded forms,
// preferring the normalized one on ties. Applying it twice is a no-op.
func Simplified(parsed algebra.Expr) string {
	collected := parsed.String()
	expanded := algebra.Expand(parsed).String()
	if len(expanded) < len(collected) {
		return expanded
	}
	return collected
}

// Factor rewrites a polynomial as a product of its rational-root factors.
// Inputs that do not factor are returned unchanged.
func (e *Engine) Factor(expr string) Result {
	parsed, err := algebra.Parse(expr)
	if err != nil {
		return fail(fmt.Sprintf("failed to factor expression: %v", err))
	}
	factored, _ := algebra.Factor(parsed, pickVariable(parsed))
	return ok(factored.String())
}

// Expand multiplies out products and powers.
func (e *Engine) Expand(expr string) Result {
	parsed, err := algebra.Parse(expr)
	if err != nil {
		return fail(fmt.Sprintf("failed to expand expression: %v", err))
	}
	return ok(algebra.Expand(parsed).String())
}

// Differentiate returns d(expr)/d(variable).
func (e *Engine) Differentiate(expr, variable string) Result {
	if variable == "" {
		variable = DefaultVariable
	}
	parsed, err := algebra.Parse(expr)
	if err != nil {
		return fail(fmt.Sprintf("failed to differentiate expression: %v", err))
	}
	return ok(algebra.Diff(parsed, variable).String())
}

// Integrate returns an antiderivative of expr with respect to variable.
func (e *Engine) Integrate(expr, variable string) Result {
	if variable == "" {
		variable = DefaultVariable
	}
	parsed, err := algebra.Parse(expr)
	if err != nil {
		return fail(fmt.Sprintf("failed to integrate expression: %v", err))
	}
	anti, found := algebra.Integrate(parsed, variable)
	if !found {
		return fail("cannot integrate expression")
	}
	return ok(anti.String())
}

// Evaluate computes a numeric value after substituting the given variable
// bindings. It fails when free variables remain.
func (e *Engine) Evaluate(expr string, vars map[string]float64) Result {
	parsed, err := algebra.Parse(expr)
	if err != nil {
		return fail(fmt.Sprintf("failed to evaluate expression: %v", err))
	}
	for name, value := range vars {
		parsed = parsed.Subst(name, algebra.Float(value))
	}
	v, evaluable := parsed.Eval()
	if !evaluable {
		free := algebra.FreeVars(parsed)
		if len(free) > 0 {
			return fail(fmt.Sprintf("cannot evaluate: unbound variables %s", strings.Join(free, ", ")))
		}
		return fail("cannot evaluate expression numerically")
	}
	return ok(strconv.FormatFloat(v, 'g', -1, 64))
}

// #endregion operations

// #region solve

// Solve solves an equation for the named variable. Input with an "=" is
// split once on the first occurrence and solved as lhs - rhs = 0; input
// without one is treated as already equated to zero.
func (e *Engine) Solve(equation, variable string) SolveResult {
	if variable == "" {
		variable = DefaultVariable
	}
	residual, err := e.Residual(equation)
	if err != nil {
		return SolveResult{Err: fmt.Sprintf("failed to parse equation: %v", err)}
	}

	out := algebra.SolveFor(residual, variable)
	switch out.Kind {
	case algebra.SolveIdentity:
		return SolveResult{Success: true, Solvable: false, Solutions: []string{}, Message: MsgIdentity}
	case algebra.SolveNoSolution:
		return SolveResult{Success: true, Solvable: false, Solutions: []string{}, Message: MsgNoSolution}
	}

	solutions := make([]string, len(out.Roots))
	for i, r := range out.Roots {
		solutions[i] = r.String()
	}
	return SolveResult{Success: true, Solvable: true, Solutions: solutions, Count: len(solutions)}
}

// Residual parses equation text into the expression lhs - rhs. It is also
// used by the answer checker, which needs the expression itself rather
// than a rendered result.
func (e *Engine) Residual(equation string) (algebra.Expr, error) {
	lhsText, rhsText, hasEq := strings.Cut(equation, "=")
	lhs, err := algebra.Parse(lhsText)
	if err != nil {
		return nil, err
	}
	if !hasEq {
		return lhs, nil
	}
	rhs, err := algebra.Parse(rhsText)
	if err != nil {
		return nil, err
	}
	return algebra.Plus(lhs, algebra.Neg(rhs)), nil
}

// pickVariable chooses the variable to operate on: "x" when present or the
// input has no variables, otherwise the alphabetically first one.
func pickVariable(parsed algebra.Expr) string {
	free := algebra.FreeVars(parsed)
	if len(free) == 0 {
		return DefaultVariable
	}
	for _, name := range free {
		if name == DefaultVariable {
			return name
		}
	}
	return free[0]
}

// #endregion solve

// #region health

// Health probes the engine by parsing and factoring a fixed quadratic.
// It returns "ok" on success and "error" otherwise.
func (e *Engine) Health() string {
	parsed, err := algebra.Parse(healthExpr)
	if err != nil {
		return "error"
	}
	factored, changed := algebra.Factor(parsed, DefaultVariable)
	if !changed || factored.String() == "" {
		return "error"
	}
	return "ok"
}

// #endregion health

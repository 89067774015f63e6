package answer

// #region imports
import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/algebra"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/symbolic"
)

// #endregion

// #region equation-shapes

// equationShapes are the equation forms worth recovering from history, in
// priority order. They deliberately cover only the single-step shapes a
// tutoring exchange produces, not arbitrary algebra.
var equationShapes = []*regexp.Regexp{
	regexp.MustCompile(`[a-z]\s*[+\-*/]\s*\d+\s*=\s*\d+`), // x + 3 = 5
	regexp.MustCompile(`\d+\s*[+\-*/]\s*[a-z]\s*=\s*\d+`), // 3 + x = 5
	regexp.MustCompile(`\d+\s*\*?\s*[a-z]\s*=\s*\d+`),     // 2x = 10 or 2*x = 10
	regexp.MustCompile(`[a-z]\s*=\s*\d+`),                 // x = 5
}

// trivialAnswerRe is the bare "x = 5" form: a stated answer, not the
// equation being solved.
var trivialAnswerRe = regexp.MustCompile(`^[a-z]\s*=\s*-?\d+(\.\d+)?$`)

var (
	answerBindingRe = regexp.MustCompile(`^([a-z])\s*=\s*(-?\d+(?:\.\d+)?)$`)
	bareNumberRe    = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
)

// #endregion

// #region extractor

// Extractor recovers the equation under discussion from conversation
// history and checks conversational answers against it.
type Extractor struct {
	engine *symbolic.Engine
}

// NewExtractor returns an extractor backed by the given symbolic engine.
func NewExtractor(engine *symbolic.Engine) *Extractor {
	return &Extractor{engine: engine}
}

// #endregion

// #region history-scan

// EquationFromHistory scans history lines newest-first for the most
// recently mentioned equation. Bare answer statements are skipped so a
// student's own "x = 5" is never mistaken for the problem.
func (e *Extractor) EquationFromHistory(history string) (string, bool) {
	if history == "" {
		return "", false
	}
	lines := strings.Split(history, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.ToLower(lines[i])
		for _, shape := range equationShapes {
			match := strings.TrimSpace(shape.FindString(line))
			if match == "" {
				continue
			}
			if trivialAnswerRe.MatchString(match) {
				continue
			}
			return match, true
		}
	}
	return "", false
}

// #endregion

// #region parse-answer

// ParseStudentAnswer reads a message as a final answer: either an explicit
// "x = 5" binding or a bare number, which is taken to bind x.
func (e *Extractor) ParseStudentAnswer(message string) (Parsed, bool) {
	msg := strings.ToLower(strings.TrimSpace(message))

	if m := answerBindingRe.FindStringSubmatch(msg); m != nil {
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Parsed{}, false
		}
		return Parsed{Variable: m[1], Value: value}, true
	}
	if bareNumberRe.MatchString(msg) {
		value, err := strconv.ParseFloat(msg, 64)
		if err != nil {
			return Parsed{}, false
		}
		return Parsed{Variable: symbolic.DefaultVariable, Value: value}, true
	}
	return Parsed{}, false
}

// #endregion

// #region solve

// SolveEquation solves a recovered equation for variable and returns the
// first solution as a float. The equation must contain an equals sign.
func (e *Extractor) SolveEquation(equation, variable string) (float64, bool) {
	if !strings.Contains(equation, "=") {
		return 0, false
	}
	residual, err := e.engine.Residual(equation)
	if err != nil {
		return 0, false
	}
	out := algebra.SolveFor(residual, variable)
	if out.Kind != algebra.SolveRoots || len(out.Roots) == 0 {
		return 0, false
	}
	v, evaluable := out.Roots[0].Eval()
	if !evaluable {
		return 0, false
	}
	return v, true
}

// #endregion

// #region check-answer

// CheckAnswer decides whether a conversational answer is right. When the
// governing equation cannot be found or solved the check fails open and
// reports correct, trading strictness for conversation flow.
func (e *Extractor) CheckAnswer(studentMessage, conversationHistory string) Check {
	parsed, found := e.ParseStudentAnswer(studentMessage)
	if !found {
		return Check{Explanation: "Could not parse student answer"}
	}

	equation, found := e.EquationFromHistory(conversationHistory)
	if !found {
		return Check{Correct: true, Explanation: "No equation found to validate against"}
	}

	expected, solved := e.SolveEquation(equation, parsed.Variable)
	if !solved {
		return Check{Correct: true, Explanation: "Could not solve equation"}
	}

	correct := math.Abs(parsed.Value-expected) < Tolerance
	var explanation string
	if correct {
		explanation = fmt.Sprintf("Correct! %s = %g", parsed.Variable, expected)
	} else {
		explanation = fmt.Sprintf("Incorrect. Expected %s = %g, got %g", parsed.Variable, expected, parsed.Value)
	}
	return Check{Correct: correct, Explanation: explanation, Expected: &expected}
}

// #endregion

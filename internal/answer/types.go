// Package answer decides whether a student's answer is right: by direct
// equivalence against a known expected form, or by mining the conversation
// for the governing equation and solving it. When the conversation gives
// too little context to verify, checks fail open rather than stall the
// dialogue on a guess.
package answer

// Tolerance bounds |student - expected| for numeric equivalence.
const Tolerance = 0.001

// #region verdict

// Verdict is the outcome of comparing two answer forms.
type Verdict struct {
	Correct        bool   `json:"correct"`
	StudentAnswer  string `json:"student_answer"`
	ExpectedAnswer string `json:"expected_answer"`
	Explanation    string `json:"explanation"`
	Approximate    bool   `json:"is_approximate,omitempty"`
}

// #endregion

// #region steps

// SolutionSteps is a coarse two-step hint plan for an equation: an
// optional factored form and the solution set.
type SolutionSteps struct {
	Solvable  bool     `json:"solvable"`
	Solutions []string `json:"solutions,omitempty"`
	Steps     []string `json:"steps"`
	Err       string   `json:"error,omitempty"`
}

// #endregion

// #region check

// Parsed is a student answer reduced to a variable binding.
type Parsed struct {
	Variable string
	Value    float64
}

// Check reports whether a conversational answer was right. Expected is
// nil when no governing equation could be found or solved.
type Check struct {
	Correct     bool     `json:"is_correct"`
	Explanation string   `json:"explanation"`
	Expected    *float64 `json:"expected_answer"`
}

// #endregion

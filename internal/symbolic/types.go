package symbolic

// #region results

// Result is the uniform outcome of a single-value engine operation.
// Exactly one of Value/Err is meaningful: Value when Success is true,
// Err when it is false. Engine methods never return Go errors or panic
// across this boundary.
type Result struct {
	Success bool   `json:"success"`
	Value   string `json:"result,omitempty"`
	Err     string `json:"error,omitempty"`
}

func ok(value string) Result { return Result{Success: true, Value: value} }
func fail(msg string) Result { return Result{Success: false, Err: msg} }

// SolveResult distinguishes the three solve outcomes. An identity and an
// unsatisfiable equation both report Solvable=false but carry different
// messages; collapsing them would make an always-true equation look like a
// dead end to the answer checker.
type SolveResult struct {
	Success   bool     `json:"success"`
	Solvable  bool     `json:"solvable"`
	Solutions []string `json:"solutions"`
	Count     int      `json:"count"`
	Message   string   `json:"message,omitempty"`
	Err       string   `json:"error,omitempty"`
}

// Solve outcome messages, fixed wording consumed by the answer checker.
const (
	MsgNoSolution = "No solution found"
	MsgIdentity   = "Infinite solutions (identity)"
)

// #endregion results

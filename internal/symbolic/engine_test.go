package symbolic

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	eng := NewEngine()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collects terms", "x + x + 1", "2*x + 1"},
		{"double star power", "x**2 + 1", "x^2 + 1"},
		{"implicit multiplication", "2x + 3", "2*x + 3"},
		{"plain number", "42", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := eng.Parse(tt.input)
			if !res.Success {
				t.Fatalf("Parse(%q) failed: %s", tt.input, res.Err)
			}
			if res.Value != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, res.Value, tt.want)
			}
		})
	}
}

func TestParseFailure(t *testing.T) {
	eng := NewEngine()
	for _, input := range []string{"", "x +", "(x + 1", "x ~ 2"} {
		res := eng.Parse(input)
		if res.Success {
			t.Errorf("Parse(%q) succeeded with %q, want failure", input, res.Value)
		}
		if res.Err == "" {
			t.Errorf("Parse(%q) failed without an error message", input)
		}
	}
}

func TestSimplify(t *testing.T) {
	eng := NewEngine()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"cancel", "x + 1 - x", "1"},
		{"expand when shorter", "(x + 1)*(x - 1)", "x^2 - 1"},
		{"keep factored when shorter", "(x + 1)^4", "(x + 1)^4"},
		{"collect", "3*x + 2*x", "5*x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := eng.Simplify(tt.input)
			if !res.Success {
				t.Fatalf("Simplify(%q) failed: %s", tt.input, res.Err)
			}
			if res.Value != tt.want {
				t.Errorf("Simplify(%q) = %q, want %q", tt.input, res.Value, tt.want)
			}
		})
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	eng := NewEngine()
	inputs := []string{"(x + 1)*(x - 1)", "x^2 + 2*x + 1", "(x + 2)^3", "sqrt(8)"}
	for _, input := range inputs {
		first := eng.Simplify(input)
		if !first.Success {
			t.Fatalf("Simplify(%q) failed: %s", input, first.Err)
		}
		second := eng.Simplify(first.Value)
		if !second.Success {
			t.Fatalf("Simplify(%q) failed: %s", first.Value, second.Err)
		}
		if second.Value != first.Value {
			t.Errorf("Simplify not idempotent on %q: %q then %q", input, first.Value, second.Value)
		}
	}
}

func TestFactor(t *testing.T) {
	eng := NewEngine()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"perfect square", "x^2 + 2*x + 1", "(x + 1)^2"},
		{"difference of squares", "x^2 - 4", "(x - 2)*(x + 2)"},
		{"irreducible unchanged", "x^2 + 1", "x^2 + 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := eng.Factor(tt.input)
			if !res.Success {
				t.Fatalf("Factor(%q) failed: %s", tt.input, res.Err)
			}
			if res.Value != tt.want {
				t.Errorf("Factor(%q) = %q, want %q", tt.input, res.Value, tt.want)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	eng := NewEngine()
	res := eng.Expand("(x + 1)^2")
	if !res.Success {
		t.Fatalf("Expand failed: %s", res.Err)
	}
	if res.Value != "x^2 + 2*x + 1" {
		t.Errorf("Expand = %q, want %q", res.Value, "x^2 + 2*x + 1")
	}
}

func TestSolveRoots(t *testing.T) {
	eng := NewEngine()
	res := eng.Solve("x^2 - 4 = 0", "x")
	if !res.Success {
		t.Fatalf("Solve failed: %s", res.Err)
	}
	if !res.Solvable {
		t.Fatalf("Solve reported unsolvable: %s", res.Message)
	}
	if res.Count != 2 || len(res.Solutions) != 2 {
		t.Fatalf("Solve count = %d solutions %v, want 2", res.Count, res.Solutions)
	}
	got := map[string]bool{}
	for _, s := range res.Solutions {
		got[s] = true
	}
	if !got["2"] || !got["-2"] {
		t.Errorf("Solve solutions = %v, want 2 and -2", res.Solutions)
	}
}

func TestSolveLinearDefaultVariable(t *testing.T) {
	eng := NewEngine()
	res := eng.Solve("2*x + 6 = 0", "")
	if !res.Success || !res.Solvable {
		t.Fatalf("Solve failed: %+v", res)
	}
	if res.Count != 1 || res.Solutions[0] != "-3" {
		t.Errorf("Solve = %v, want [-3]", res.Solutions)
	}
}

func TestSolveWithoutEquals(t *testing.T) {
	eng := NewEngine()
	res := eng.Solve("x - 7", "x")
	if !res.Success || !res.Solvable {
		t.Fatalf("Solve failed: %+v", res)
	}
	if res.Count != 1 || res.Solutions[0] != "7" {
		t.Errorf("Solve = %v, want [7]", res.Solutions)
	}
}

func TestSolveIdentity(t *testing.T) {
	eng := NewEngine()
	res := eng.Solve("x = x", "x")
	if !res.Success {
		t.Fatalf("Solve failed: %s", res.Err)
	}
	if res.Solvable {
		t.Fatalf("identity reported solvable: %v", res.Solutions)
	}
	if res.Message != MsgIdentity {
		t.Errorf("Message = %q, want %q", res.Message, MsgIdentity)
	}
}

func TestSolveNoSolution(t *testing.T) {
	eng := NewEngine()
	res := eng.Solve("x + 1 = x + 2", "x")
	if !res.Success {
		t.Fatalf("Solve failed: %s", res.Err)
	}
	if res.Solvable {
		t.Fatalf("contradiction reported solvable: %v", res.Solutions)
	}
	if res.Message != MsgNoSolution {
		t.Errorf("Message = %q, want %q", res.Message, MsgNoSolution)
	}
}

func TestSolveParseError(t *testing.T) {
	eng := NewEngine()
	res := eng.Solve("x +* 2 = 0", "x")
	if res.Success {
		t.Fatalf("Solve succeeded on malformed input: %+v", res)
	}
	if res.Err == "" {
		t.Error("Solve failure carries no error message")
	}
}

func TestDifferentiate(t *testing.T) {
	eng := NewEngine()
	res := eng.Differentiate("x^3", "x")
	if !res.Success {
		t.Fatalf("Differentiate failed: %s", res.Err)
	}
	if res.Value != "3*x^2" {
		t.Errorf("Differentiate = %q, want %q", res.Value, "3*x^2")
	}
}

func TestIntegrate(t *testing.T) {
	eng := NewEngine()
	res := eng.Integrate("2*x", "x")
	if !res.Success {
		t.Fatalf("Integrate failed: %s", res.Err)
	}
	if res.Value != "x^2" {
		t.Errorf("Integrate = %q, want %q", res.Value, "x^2")
	}
}

func TestIntegrateUnsupported(t *testing.T) {
	eng := NewEngine()
	res := eng.Integrate("sin(x)*cos(x)", "x")
	if res.Success {
		t.Fatalf("Integrate succeeded on unsupported input: %q", res.Value)
	}
	if !strings.Contains(res.Err, "cannot integrate") {
		t.Errorf("Err = %q, want mention of cannot integrate", res.Err)
	}
}

func TestEvaluate(t *testing.T) {
	eng := NewEngine()
	res := eng.Evaluate("x^2 + y", map[string]float64{"x": 3, "y": 1})
	if !res.Success {
		t.Fatalf("Evaluate failed: %s", res.Err)
	}
	if res.Value != "10" {
		t.Errorf("Evaluate = %q, want %q", res.Value, "10")
	}
}

func TestEvaluateUnbound(t *testing.T) {
	eng := NewEngine()
	res := eng.Evaluate("x + y", map[string]float64{"x": 1})
	if res.Success {
		t.Fatalf("Evaluate succeeded with unbound variable: %q", res.Value)
	}
	if !strings.Contains(res.Err, "y") {
		t.Errorf("Err = %q, want mention of the unbound variable", res.Err)
	}
}

func TestHealth(t *testing.T) {
	eng := NewEngine()
	if got := eng.Health(); got != "ok" {
		t.Errorf("Health = %q, want %q", got, "ok")
	}
}

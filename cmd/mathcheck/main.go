package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/answer"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/symbolic"
)

// #region main

func main() {
	op := flag.String("op", "detect", "operation: detect|parse|simplify|factor|expand|solve|diff|integrate|eval|health")
	variable := flag.String("var", "x", "variable for solve/diff/integrate")
	at := flag.String("at", "", `variable values for eval, e.g. "x=2,y=3"`)
	minConfidence := flag.Float64("min", 0, "detection confidence threshold (0 = default)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	input := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if input == "" && *op != "health" {
		fmt.Fprintln(os.Stderr, `usage: mathcheck [--op name] [--var x] [--json] "text or expression"`)
		fmt.Fprintln(os.Stderr, `       mathcheck --op eval --at "x=2" "x^2 + 1"`)
		os.Exit(2)
	}

	engine := symbolic.NewEngine()

	var err error
	switch *op {
	case "detect":
		err = runDetect(engine, input, *minConfidence, *jsonOut)
	case "parse":
		err = printResult(engine.Parse(input), *jsonOut)
	case "simplify":
		err = printResult(engine.Simplify(input), *jsonOut)
	case "factor":
		err = printResult(engine.Factor(input), *jsonOut)
	case "expand":
		err = printResult(engine.Expand(input), *jsonOut)
	case "diff":
		err = printResult(engine.Differentiate(input, *variable), *jsonOut)
	case "integrate":
		err = printResult(engine.Integrate(input, *variable), *jsonOut)
	case "eval":
		vars, parseErr := parseAt(*at)
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "bad --at value: %v\n", parseErr)
			os.Exit(2)
		}
		err = printResult(engine.Evaluate(input, vars), *jsonOut)
	case "solve":
		err = runSolve(engine, input, *variable, *jsonOut)
	case "health":
		fmt.Println(engine.Health())
	default:
		fmt.Fprintf(os.Stderr, "unknown operation %q\n", *op)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region detect-mode

// detectOutput bundles detection and per-expression analysis for JSON mode.
type detectOutput struct {
	Detection detect.DetectionResult `json:"detection"`
	Analysis  *guard.MathContext     `json:"analysis,omitempty"`
}

func runDetect(engine *symbolic.Engine, input string, minConfidence float64, jsonOut bool) error {
	detector := detect.NewDetector(minConfidence)
	checker := answer.NewChecker(engine)

	det := detector.Detect(input)
	mathCtx := guard.SummarizeMath(det, engine, checker)

	if jsonOut {
		return printJSON(detectOutput{Detection: det, Analysis: mathCtx})
	}

	if !det.HasMath {
		fmt.Println("no math detected")
		return nil
	}

	fmt.Printf("Detected: %s (confidence %.2f)\n\n", det.OverallType, det.Confidence)
	fmt.Printf("%-24s  %-16s  %10s  %s\n", "Text", "Type", "Confidence", "Pattern")
	fmt.Printf("%-24s  %-16s  %10s  %s\n",
		"------------------------", "----------------", "----------", "--------------------")
	for _, m := range det.Matches {
		fmt.Printf("%-24s  %-16s  %10.2f  %s\n", m.Text, m.Type, m.Confidence, m.Pattern)
	}

	if mathCtx != nil && len(mathCtx.Expressions) > 0 {
		fmt.Printf("\nAnalysis:\n")
		for _, expr := range mathCtx.Expressions {
			fmt.Printf("  %s\n", expr.Original)
			if expr.Simplified != "" && expr.Simplified != expr.Original {
				fmt.Printf("    simplified: %s\n", expr.Simplified)
			}
			if len(expr.Solutions) > 0 {
				fmt.Printf("    solutions:  %s\n", strings.Join(expr.Solutions, ", "))
			}
			for _, step := range expr.Steps {
				fmt.Printf("    step: %s\n", step)
			}
		}
	}
	return nil
}

// #endregion detect-mode

// #region op-modes

func printResult(r symbolic.Result, jsonOut bool) error {
	if jsonOut {
		return printJSON(r)
	}
	if !r.Success {
		return fmt.Errorf("%s", r.Err)
	}
	fmt.Println(r.Value)
	return nil
}

func runSolve(engine *symbolic.Engine, input, variable string, jsonOut bool) error {
	r := engine.Solve(input, variable)
	if jsonOut {
		return printJSON(r)
	}
	if !r.Success {
		return fmt.Errorf("%s", r.Err)
	}
	if !r.Solvable {
		fmt.Println(r.Message)
		return nil
	}
	for _, s := range r.Solutions {
		fmt.Printf("%s = %s\n", variable, s)
	}
	return nil
}

// parseAt parses "x=2,y=3" into an evaluation point.
func parseAt(at string) (map[string]float64, error) {
	if at == "" {
		return nil, nil
	}
	vars := make(map[string]float64)
	for _, pair := range strings.Split(at, ",") {
		name, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("expected name=value, got %q", pair)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value for %s: %w", strings.TrimSpace(name), err)
		}
		vars[strings.TrimSpace(name)] = f
	}
	return vars, nil
}

// #endregion op-modes

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output

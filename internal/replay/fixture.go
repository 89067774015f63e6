package replay

import (
	"encoding/json"
	"fmt"
	"os"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a recorded tutoring session.
type Fixture struct {
	Description     string                  `json:"description"`
	Config          FixtureConfig           `json:"config"`
	Turns           []FixtureTurn           `json:"turns"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureConfig carries the guard settings for a replay run. Zero values
// select the pipeline defaults.
type FixtureConfig struct {
	MaxRetries    int     `json:"max_retries"`
	MinConfidence float64 `json:"min_confidence"`
}

// FixtureTurn is one student message plus the scripted model replies the
// pipeline consumes while handling it: drafts and judge verdicts, in the
// order the live pipeline would request them.
type FixtureTurn struct {
	TurnID       string   `json:"turn_id"`
	Student      string   `json:"student"`
	ModelReplies []string `json:"model_replies"`
}

// FixtureExpectedResult captures the expected outcome per turn. Outcome is
// one of the Outcome constants; Attempts zero and Correct nil skip those
// checks.
type FixtureExpectedResult struct {
	TurnID   string `json:"turn_id"`
	Outcome  string `json:"outcome"`
	Attempts int    `json:"attempts,omitempty"`
	Correct  *bool  `json:"correct,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks the fixture's internal consistency: turns need ids and
// content, and every expectation must reference a turn and a known outcome.
func (f *Fixture) Validate() error {
	turns := make(map[string]bool, len(f.Turns))
	for i, t := range f.Turns {
		if t.TurnID == "" {
			return fmt.Errorf("turn %d: missing turn_id", i)
		}
		if turns[t.TurnID] {
			return fmt.Errorf("duplicate turn_id %q", t.TurnID)
		}
		turns[t.TurnID] = true
		if t.Student == "" {
			return fmt.Errorf("turn %q: missing student message", t.TurnID)
		}
	}
	for _, exp := range f.ExpectedResults {
		if !turns[exp.TurnID] {
			return fmt.Errorf("expected result for unknown turn %q", exp.TurnID)
		}
		switch exp.Outcome {
		case "", OutcomeAccepted, OutcomeFallback, OutcomeFinalAnswer:
		default:
			return fmt.Errorf("turn %q: unknown outcome %q", exp.TurnID, exp.Outcome)
		}
	}
	return nil
}

// Expectation returns the recorded expectation for a turn, if any.
func (f *Fixture) Expectation(turnID string) (FixtureExpectedResult, bool) {
	for _, exp := range f.ExpectedResults {
		if exp.TurnID == turnID {
			return exp, true
		}
	}
	return FixtureExpectedResult{}, false
}

// #endregion fixture-loader

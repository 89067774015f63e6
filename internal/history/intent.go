package history

import "strings"

// #region intent
// Intent is the keyword-level reading of a single student message.
type Intent struct {
	IsQuestion     bool     `json:"is_question"`
	IsStuck        bool     `json:"is_stuck"`
	IsVerification bool     `json:"is_verification"`
	HasAttempt     bool     `json:"has_attempt"`
	Concepts       []string `json:"mentions_concept"`
}

var stuckPhrases = []string{"don't understand", "confused", "stuck", "don't know", "help"}

var verificationPhrases = []string{"is this right", "correct", "did i", "check my"}

var attemptPhrases = []string{"i think", "i tried", "i got", "my answer"}

// conceptKeywords maps topic names to trigger substrings, scanned in order.
var conceptKeywords = []struct {
	name     string
	keywords []string
}{
	{"algebra", []string{"variable", "equation", "solve", "x", "y"}},
	{"arithmetic", []string{"add", "subtract", "multiply", "divide", "sum", "difference"}},
	{"fractions", []string{"fraction", "numerator", "denominator", "half", "third"}},
	{"exponents", []string{"exponent", "power", "square", "cube", "squared"}},
	{"linear_equations", []string{"slope", "y-intercept", "line", "graph"}},
	{"quadratic", []string{"quadratic", "parabola", "factor", "roots"}},
}

// ExtractIntent classifies what the student seems to want. Matching is plain
// substring containment over the lowercased message, single letters included:
// any message mentioning an x reads as algebra.
func ExtractIntent(message string) Intent {
	lower := strings.ToLower(message)
	return Intent{
		IsQuestion:     strings.Contains(message, "?"),
		IsStuck:        containsAny(lower, stuckPhrases),
		IsVerification: containsAny(lower, verificationPhrases),
		HasAttempt:     containsAny(lower, attemptPhrases),
		Concepts:       extractConcepts(lower),
	}
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func extractConcepts(lower string) []string {
	var concepts []string
	for _, c := range conceptKeywords {
		if containsAny(lower, c.keywords) {
			concepts = append(concepts, c.name)
		}
	}
	return concepts
}

// #endregion intent

// #region topic
// Topic names the concepts mentioned anywhere in the window, first mention
// first, for the summary's compression line.
func (w *Window) Topic() string {
	seen := make(map[string]bool)
	var ordered []string
	for _, e := range w.entries {
		for _, c := range extractConcepts(strings.ToLower(e.Content)) {
			if !seen[c] {
				seen[c] = true
				ordered = append(ordered, c)
			}
		}
	}
	return strings.Join(ordered, ", ")
}

// #endregion topic

package detect

// #region imports
import (
	"regexp"
	"strings"
)

// #endregion

// #region pattern-table

// pattern is one row of the detection table. Rows earlier in the table
// represent more specific shapes; the exclusion rule below keeps the
// generic equation row from re-claiming simple answer statements.
type pattern struct {
	name string
	re   *regexp.Regexp
	kind ExprType
	// confidence before context adjustment
	confidence float64
	// excludeSimpleAnswer skips matches of the bare "x = 5" form, which
	// belong to the answer-statement row.
	excludeSimpleAnswer bool
	// boundarySpace marks rows whose regex consumes a leading whitespace
	// byte in place of a word boundary.
	boundarySpace bool
	// cutConjunction truncates the right-hand side at the first "and",
	// "or" or "but" so trailing prose is not swallowed into the match.
	cutConjunction bool
}

// patterns is the ordered detection table. Order matters only for
// stable tie-breaking: every row is always scanned.
var patterns = []pattern{
	{
		name:       "answer_statement",
		re:         regexp.MustCompile(`(?i)\b([a-zA-Z])\s*=\s*(-?\d+(?:\.\d+)?)\b`),
		kind:       TypeAnswerStatement,
		confidence: 0.95,
	},
	{
		name:                "equation",
		re:                  regexp.MustCompile(`(?i)(?:^|\s)(?:\d+[\da-zA-Z+\-*/^().]*|[a-z][\d+\-*/^().\s]*?)\s*=\s*[\da-zA-Z+\-*/^().\s]+`),
		kind:                TypeEquation,
		confidence:          0.90,
		excludeSimpleAnswer: true,
		boundarySpace:       true,
		cutConjunction:      true,
	},
	{
		name:          "inequality",
		re:            regexp.MustCompile(`(?i)(?:^|\s)[\d(a-zA-Z][\da-zA-Z\s+\-*/^().]*?[<>≤≥]\s*[\da-zA-Z+\-*/^()]+`),
		kind:          TypeInequality,
		confidence:    0.85,
		boundarySpace: true,
	},
	{
		name:       "algebraic_expression",
		re:         regexp.MustCompile(`(?i)\b\d*[a-zA-Z][\^*]?\d*\s*[+\-]\s*\d*[a-zA-Z]?[\^*]?\d*`),
		kind:       TypeExpression,
		confidence: 0.80,
	},
	{
		name:       "algebraic_term",
		re:         regexp.MustCompile(`(?i)\d*[a-zA-Z][\^*]\d+|\d+[a-zA-Z]|\([a-zA-Z\s+\-\d]+\)`),
		kind:       TypeExpression,
		confidence: 0.75,
	},
	{
		name:       "numerical",
		re:         regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*[+\-*/^]\s*\d+(?:\.\d+)?\b`),
		kind:       TypeNumerical,
		confidence: 0.70,
	},
	{
		name:       "function",
		re:         regexp.MustCompile(`(?i)\b(sqrt|sin|cos|tan|log|ln|abs)\s*\([^)]+\)`),
		kind:       TypeExpression,
		confidence: 0.85,
	},
	{
		name:       "fraction",
		re:         regexp.MustCompile(`(?i)\b\d+\s*/\s*\d+\b`),
		kind:       TypeNumerical,
		confidence: 0.65,
	},
}

// simpleAnswerRe recognizes the trivial "<letter> = <signed number>" form.
var simpleAnswerRe = regexp.MustCompile(`^\s*[a-zA-Z]\s*=\s*-?\d+(?:\.\d+)?\s*$`)

// #endregion

// #region keywords

// mathKeywords raise confidence when present anywhere in the message.
var mathKeywords = []string{
	"solve", "simplify", "factor", "expand", "equation", "expression",
	"calculate", "compute", "evaluate", "answer", "solution", "equal",
	"plus", "minus", "times", "divided", "multiply", "subtract", "add",
}

// nonMathKeywords lower confidence; they mark contexts where digits and
// equals signs are usually not math (emails, codes, timestamps).
var nonMathKeywords = []string{
	"email", "address", "password", "username", "code", "id",
	"phone", "zip", "date", "time", "version",
}

// #endregion

// #region match-cleanup

// conjunctions end an equation's right-hand side mid-sentence.
var conjunctions = []string{"and", "or", "but"}

// cutAtConjunction truncates text after the first conjunction that appears
// past the equals sign. Returns the possibly shortened text.
func cutAtConjunction(text string) string {
	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		return text
	}
	rhs := strings.ToLower(text[eq:])
	cut := len(rhs)
	for _, c := range conjunctions {
		if i := strings.Index(rhs, c); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:eq+cut]
}

// trimSpan narrows [start,end) past leading and trailing whitespace,
// returning the trimmed text with its adjusted offsets.
func trimSpan(text string, start, end int) (string, int, int) {
	for start < end && isSpaceByte(text[start]) {
		start++
	}
	for end > start && isSpaceByte(text[end-1]) {
		end--
	}
	return text[start:end], start, end
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// #endregion

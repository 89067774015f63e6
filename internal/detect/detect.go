package detect

// #region imports
import (
	"sort"
	"strings"
	"unicode/utf8"
)

// #endregion

// #region detector

// DefaultMinConfidence is the detection threshold used when none is given.
const DefaultMinConfidence = 0.6

// Detector scans student messages for mathematical content.
type Detector struct {
	minConfidence float64
}

// NewDetector returns a detector with the given confidence threshold.
// Values outside (0,1] fall back to DefaultMinConfidence.
func NewDetector(minConfidence float64) *Detector {
	if minConfidence <= 0 || minConfidence > 1 {
		minConfidence = DefaultMinConfidence
	}
	return &Detector{minConfidence: minConfidence}
}

// #endregion

// #region detect

// Detect scans text against every pattern row, adjusts each match's
// confidence by message context, drops sub-threshold matches, and
// deduplicates overlapping spans keeping the highest confidence.
func (d *Detector) Detect(text string) DetectionResult {
	if text == "" {
		return emptyResult()
	}

	lower := strings.ToLower(text)
	textRunes := utf8.RuneCountInString(text)

	var candidates []Match
	var names []string
	maxConfidence := 0.0

	for _, p := range patterns {
		for _, span := range p.re.FindAllStringIndex(text, -1) {
			matched, start, end := trimSpan(text, span[0], span[1])
			if p.cutConjunction {
				cut := cutAtConjunction(matched)
				if len(cut) < len(matched) {
					matched, start, end = trimSpan(text, start, start+len(cut))
				}
			}
			if utf8.RuneCountInString(matched) < 2 {
				continue
			}
			if p.excludeSimpleAnswer && simpleAnswerRe.MatchString(matched) {
				continue
			}

			confidence := adjustConfidence(lower, textRunes, matched, p.confidence)
			if confidence < d.minConfidence {
				continue
			}

			candidates = append(candidates, Match{
				Text:       matched,
				Type:       p.kind,
				Pattern:    p.name,
				Confidence: confidence,
				Start:      start,
				End:        end,
			})
			names = append(names, p.name)
			if confidence > maxConfidence {
				maxConfidence = confidence
			}
		}
	}

	matches := dedupe(candidates)
	hasMath := len(matches) > 0 && maxConfidence >= d.minConfidence

	result := DetectionResult{
		HasMath:    hasMath,
		Confidence: maxConfidence,
		Matches:    matches,
		Patterns:   uniqueSorted(names),
		TextLength: textRunes,
	}
	if t, found := overallType(matches); found {
		result.OverallType = t
	}
	return result
}

func emptyResult() DetectionResult {
	return DetectionResult{Matches: []Match{}, Patterns: []string{}}
}

// #endregion

// #region confidence

// adjustConfidence shifts a pattern's base confidence by message context:
// math keywords raise it, non-math keywords lower it, and a very short
// match inside long prose is penalized as likely noise.
func adjustConfidence(lowerText string, textRunes int, matched string, base float64) float64 {
	confidence := base

	mathHits := 0
	for _, kw := range mathKeywords {
		if strings.Contains(lowerText, kw) {
			mathHits++
		}
	}
	if mathHits > 0 {
		confidence = min(1.0, confidence+float64(mathHits)*0.05)
	}

	nonMathHits := 0
	for _, kw := range nonMathKeywords {
		if strings.Contains(lowerText, kw) {
			nonMathHits++
		}
	}
	if nonMathHits > 0 {
		confidence = max(0.0, confidence-float64(nonMathHits)*0.1)
	}

	if utf8.RuneCountInString(matched) < 3 && textRunes > 50 {
		confidence = max(0.0, confidence-0.2)
	}
	return confidence
}

// #endregion

// #region dedupe

// dedupe drops overlapping matches, keeping higher confidence and, on
// equal confidence, the earlier start. Output is in source order.
func dedupe(candidates []Match) []Match {
	if len(candidates) <= 1 {
		return append([]Match{}, candidates...)
	}

	ranked := append([]Match{}, candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].Start < ranked[j].Start
	})

	kept := make([]Match, 0, len(ranked))
	for _, m := range ranked {
		overlaps := false
		for _, k := range kept {
			if m.Start < k.End && k.Start < m.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, m)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// overallType is the type of the highest-confidence match; on ties the
// earliest match in the text wins.
func overallType(matches []Match) (ExprType, bool) {
	if len(matches) == 0 {
		return TypeUnknown, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Confidence > best.Confidence {
			best = m
		}
	}
	return best.Type, true
}

func uniqueSorted(names []string) []string {
	if len(names) == 0 {
		return []string{}
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// #endregion

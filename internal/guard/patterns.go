package guard

import "regexp"

// All patterns run against the lowercased candidate response.

// #region patterns
// directAnswerPatterns always reject: explicit answer statements,
// step-numbered walkthroughs, formula application with values.
// Worded so they do not fire on acknowledgments ("the answer is correct").
var directAnswerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bthe answer is\s+[^\s]`),
	regexp.MustCompile(`\bthe solution is\s+\d+`),
	regexp.MustCompile(`\bthe result is\s+\d+`),
	regexp.MustCompile(`\bstep\s+\d+:`),
	regexp.MustCompile(`\bfirst,\s+\w+\.\s+then,`),
	regexp.MustCompile(`\buse\s+the\s+formula`),
	regexp.MustCompile(`\bapply\s+the\s+formula`),
	regexp.MustCompile(`\bsubstitute\s+\d+`),
	regexp.MustCompile(`\bplug\s+in\s+\d+`),
}

// givingAnswerPatterns reject only when the response is not acknowledging a
// correct answer the student already produced.
var givingAnswerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bx\s*=\s*\d+`),
	regexp.MustCompile(`\by\s*=\s*\d+`),
	regexp.MustCompile(`\bz\s*=\s*\d+`),
	regexp.MustCompile(`\bequals\s*\d+`),
	regexp.MustCompile(`\b=\s*\d+\b`),
}

// acknowledgmentPhrases mark a response as confirming the student's own
// answer, which relaxes the giving-answer checks.
var acknowledgmentPhrases = []*regexp.Regexp{
	regexp.MustCompile(`\bcorrect\b`),
	regexp.MustCompile(`\bexactly\b`),
	regexp.MustCompile(`\bperfect\b`),
	regexp.MustCompile(`\bexcellent\b`),
	regexp.MustCompile(`\bgreat job\b`),
	regexp.MustCompile(`\bwell done\b`),
	regexp.MustCompile(`\byou'?ve got it\b`),
	regexp.MustCompile(`\byou'?ve solved it\b`),
	regexp.MustCompile(`\bthat'?s right\b`),
	regexp.MustCompile(`\byes\b`),
}

// directAnswerKeywords are counted by substring; the tolerated count depends
// on whether the response is an acknowledgment.
var directAnswerKeywords = []string{
	"answer", "solution", "result", "equals", "formula",
	"calculate", "substitute", "plug in", "step 1", "step 2",
}

// #endregion patterns

// #region fallbacks
// fallbackQuestions is the canned pool used when generation fails or no
// attempt survives validation.
var fallbackQuestions = []string{
	"What have you tried so far to solve this problem?",
	"What do you think might be the first step?",
	"Can you tell me what you understand about this problem?",
	"What strategies do you know that might help here?",
	"What part of this problem seems most challenging to you?",
}

// #endregion fallbacks

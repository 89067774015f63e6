package guard

import (
	"strings"
	"testing"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
)

func TestBuildPrompt_FirstTurn(t *testing.T) {
	p := buildPrompt(Turn{StudentMessage: "help me solve 2x + 5 = 13"}, 1)
	if !strings.HasPrefix(p, "You are a Socratic math tutor") {
		t.Error("expected no emphasis prefix on attempt 1")
	}
	if !strings.Contains(p, "START of a new conversation") {
		t.Error("expected conversation-start instructions")
	}
	if !strings.Contains(p, "Student: help me solve 2x + 5 = 13") {
		t.Error("expected student message embedded")
	}
	if strings.Contains(p, "MATH ANALYSIS") {
		t.Error("expected no math block without analysis")
	}
	if strings.Contains(p, "Previous conversation:") {
		t.Error("expected no context section on first turn")
	}
}

func TestBuildPrompt_EmphasisEscalates(t *testing.T) {
	turn := Turn{StudentMessage: "help"}
	if p := buildPrompt(turn, 2); !strings.HasPrefix(p, "IMPORTANT: ") {
		t.Error("expected IMPORTANT prefix on attempt 2")
	}
	if p := buildPrompt(turn, 3); !strings.HasPrefix(p, "CRITICAL: ") {
		t.Error("expected CRITICAL prefix on attempt 3")
	}
	if p := buildPrompt(turn, 7); !strings.HasPrefix(p, "CRITICAL: ") {
		t.Error("expected emphasis to stay capped after attempt 3")
	}
}

func TestBuildPrompt_ContinuingConversation(t *testing.T) {
	turn := Turn{
		StudentMessage: "subtract 5",
		Context:        "Student: 2x + 5 = 13\nTutor: What operation comes first?",
	}
	p := buildPrompt(turn, 1)
	if !strings.Contains(p, "Previous conversation:\nStudent: 2x + 5 = 13") {
		t.Error("expected context section")
	}
	if !strings.Contains(p, "CONTINUING conversation") {
		t.Error("expected continuing instructions")
	}
	if strings.Contains(p, "START of a new conversation") {
		t.Error("expected no start instructions with context present")
	}
}

func TestBuildPrompt_AnswerInstructions(t *testing.T) {
	yes, no := true, false
	base := Turn{StudentMessage: "x = 4", Context: "Student: 2x = 8"}

	correct := base
	correct.IsCorrectAnswer = &yes
	if p := buildPrompt(correct, 1); !strings.Contains(p, "CORRECT final answer") {
		t.Error("expected celebration instructions")
	}

	incorrect := base
	incorrect.IsCorrectAnswer = &no
	if p := buildPrompt(incorrect, 1); !strings.Contains(p, "INCORRECT final answer") {
		t.Error("expected correction instructions")
	}
}

func TestBuildPrompt_FirstTurnBeatsAnswerFlag(t *testing.T) {
	yes := true
	p := buildPrompt(Turn{StudentMessage: "x = 4", IsCorrectAnswer: &yes}, 1)
	if !strings.Contains(p, "START of a new conversation") {
		t.Error("expected start instructions without context")
	}
	if strings.Contains(p, "CORRECT final answer") {
		t.Error("expected no celebration instructions without context")
	}
}

func TestBuildPrompt_MathBlock(t *testing.T) {
	turn := Turn{
		StudentMessage: "2x + 5 = 13",
		Context:        "Student: hello",
		Math: &MathContext{
			Detected: true,
			Expressions: []MathExpression{
				{
					Original:  "2x + 5 = 13",
					Type:      detect.TypeEquation,
					Solutions: []string{"4"},
					Steps:     []string{"Solution: x = 4"},
				},
				{Original: "2x", Type: detect.TypeExpression, Simplified: "2*x"},
			},
		},
	}
	p := buildPrompt(turn, 1)
	for _, want := range []string{
		"MATH ANALYSIS (use this to ask informed questions):",
		"- Expression: 2x + 5 = 13",
		"  Solutions exist: 4",
		"  Solution steps: 1 steps available",
		"- Expression: 2x",
		"  Simplified: 2*x",
		"NEVER reveal the answers directly",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_MultipleSolutionsJoined(t *testing.T) {
	turn := Turn{
		StudentMessage: "x^2 = 4",
		Math: &MathContext{
			Detected: true,
			Expressions: []MathExpression{
				{Original: "x^2 = 4", Type: detect.TypeEquation, Solutions: []string{"-2", "2"}},
			},
		},
	}
	p := buildPrompt(turn, 1)
	if !strings.Contains(p, "Solutions exist: -2, 2") {
		t.Error("expected comma-joined solutions")
	}
}

func TestBuildPrompt_UndetectedMathOmitted(t *testing.T) {
	turn := Turn{
		StudentMessage: "hello there",
		Math:           &MathContext{Detected: false},
	}
	if p := buildPrompt(turn, 1); strings.Contains(p, "MATH ANALYSIS") {
		t.Error("expected no math block when nothing was detected")
	}
}

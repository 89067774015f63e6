package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/answer"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/config"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/history"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/logging"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/store"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/symbolic"
)

// turnTimeout bounds one full turn: worst case is every retry plus its
// judge call against a slow local backend.
const turnTimeout = 90 * time.Second

// #region main
func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Keep stdout for the conversation; pipeline logs go to stderr.
	logger := logging.New(os.Stderr, logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "tutor-repl",
	})
	slog.SetDefault(logger)

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	genClient, err := llm.New(cfg.ClientConfig())
	if err != nil {
		log.Fatalf("init llm client: %v", err)
	}
	judgeClient, err := llm.New(cfg.JudgeConfig())
	if err != nil {
		log.Fatalf("init judge client: %v", err)
	}

	engine := symbolic.NewEngine()
	checker := answer.NewChecker(engine)
	extractor := answer.NewExtractor(engine)
	detector := detect.NewDetector(cfg.Guard.MinConfidence)
	validator := guard.NewValidator(judgeClient, logger)
	orch := guard.NewOrchestrator(genClient, validator, cfg.Guard.MaxRetries, logger)

	health := genClient.CheckHealth(context.Background())

	fmt.Println("Socratic math tutor ready.")
	fmt.Printf("  DB: %s | LLM: %s/%s (%s)\n", cfg.DBPath, health.Provider, health.Model, health.Status)
	fmt.Println("Type a math question (or 'quit' to exit):")

	conversationID := uuid.NewString()
	scanner := bufio.NewScanner(os.Stdin)
	turnNum := 0

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		turnNum++
		if err := runTurn(st, detector, engine, checker, extractor, orch, conversationID, line, turnNum); err != nil {
			log.Printf("turn error: %v", err)
		}
	}
}

// #endregion main

// #region turn

// runTurn pushes one student line through the full pipeline and persists
// both sides of the exchange.
func runTurn(
	st *store.Store,
	detector *detect.Detector,
	engine *symbolic.Engine,
	checker *answer.Checker,
	extractor *answer.Extractor,
	orch *guard.Orchestrator,
	conversationID, line string,
	turnNum int,
) error {
	conv, _, err := st.EnsureConversation(conversationID, store.TitleFor(line))
	if err != nil {
		return fmt.Errorf("ensure conversation: %w", err)
	}

	// Context snapshot precedes the save so the prompt sees prior turns only.
	total, err := st.CountMessages(conv.ID)
	if err != nil {
		return fmt.Errorf("count messages: %w", err)
	}
	window, err := st.RecentWindow(conv.ID, history.DefaultWindowSize)
	if err != nil {
		return fmt.Errorf("load window: %w", err)
	}
	conversationContext := window.Summarize(total)

	if _, err := st.SaveMessage(store.Message{
		ConversationID: conv.ID,
		Role:           history.RoleStudent,
		Content:        line,
	}); err != nil {
		return fmt.Errorf("save student message: %w", err)
	}

	det := detector.Detect(line)
	mathCtx := guard.SummarizeMath(det, engine, checker)

	var isCorrect *bool
	if orch.DetectFinalAnswer(line, mathCtx) {
		check := extractor.CheckAnswer(line, conversationContext)
		isCorrect = &check.Correct
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	result := orch.GenerateValidated(ctx, guard.Turn{
		StudentMessage:  line,
		Context:         conversationContext,
		Math:            mathCtx,
		IsCorrectAnswer: isCorrect,
	})
	cancel()

	fmt.Printf("\n%s\n\n", result.Response)

	meta, _ := json.Marshal(map[string]any{
		"validation_passed":      result.ValidationPassed,
		"attempts":               result.Attempts,
		"confidence":             result.Confidence,
		"socratic_guard_enabled": true,
	})
	tutorMsg, err := st.SaveMessage(store.Message{
		ConversationID: conv.ID,
		Role:           history.RoleTutor,
		Content:        result.Response,
		MetaJSON:       meta,
	})
	if err != nil {
		return fmt.Errorf("save tutor message: %w", err)
	}

	if err := st.LogValidation(store.AuditEntry{
		ConversationID: conv.ID,
		MessageID:      tutorMsg.ID,
		Passed:         result.ValidationPassed,
		Attempts:       result.Attempts,
		Confidence:     result.Confidence,
		Reason:         result.Reason,
		FinalAnswer:    result.IsFinalAnswer,
		FallbackUsed:   !result.ValidationPassed,
	}); err != nil {
		log.Printf("audit error: %v", err)
	}

	fmt.Printf("[turn-%d] passed=%t attempts=%d confidence=%.2f final=%t\n",
		turnNum, result.ValidationPassed, result.Attempts, result.Confidence, result.IsFinalAnswer)
	return nil
}

// #endregion turn

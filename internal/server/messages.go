package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/answer"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/history"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/store"
)

// errBadRequest marks pipeline failures caused by the client's input.
var errBadRequest = errors.New("bad request")

// #region types
// TurnRequest is one inbound student message. ConversationID and MessageID
// are optional; empty values draw fresh UUIDs.
type TurnRequest struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	Content        string `json:"content"`
}

// TurnReply is the transport-neutral outcome of one student turn.
type TurnReply struct {
	ConversationID string            `json:"conversation_id"`
	Student        store.Message     `json:"student_message"`
	Tutor          store.Message     `json:"tutor_message"`
	Validation     validationSummary `json:"validation"`
	AnswerCheck    *answer.Check     `json:"answer_check,omitempty"`

	// Duplicate marks a replayed message id; only MessageID is set then.
	Duplicate bool   `json:"-"`
	MessageID string `json:"-"`
}

// validationSummary is the guard outcome exposed to clients.
type validationSummary struct {
	Passed      bool    `json:"passed"`
	Attempts    int     `json:"attempts"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason,omitempty"`
	FinalAnswer bool    `json:"final_answer"`
}

// tutorMeta is the metadata stored alongside every tutor message.
type tutorMeta struct {
	ValidationPassed bool    `json:"validation_passed"`
	Attempts         int     `json:"attempts"`
	Confidence       float64 `json:"confidence"`
	GuardEnabled     bool    `json:"socratic_guard_enabled"`
}

// #endregion types

// #region handler
// handleStudentMessage runs the full pipeline for one student turn posted
// over HTTP.
func (s *Server) handleStudentMessage(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := s.processTurn(c.Request.Context(), req, nil)
	if err != nil {
		if errors.Is(err, errBadRequest) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("turn failed", "conversation", req.ConversationID, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to process message")
		return
	}
	if reply.Duplicate {
		respondOK(c, http.StatusOK, gin.H{"message_id": reply.MessageID, "status": "received"})
		return
	}
	respondOK(c, http.StatusOK, reply)
}

// #endregion handler

// #region pipeline
// processTurn is the one pipeline both transports share: dedup, persist the
// student message, analyze it, run the guarded generation, persist and
// broadcast the tutor reply, and write the audit row.
//
// ack, when non-nil, fires as soon as the student message id is durable,
// before generation starts; the websocket path uses it to acknowledge
// receipt without waiting on the model.
func (s *Server) processTurn(ctx context.Context, req TurnRequest, ack func(messageID string)) (TurnReply, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return TurnReply{}, fmt.Errorf("%w: missing content", errBadRequest)
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	} else if _, err := uuid.Parse(req.ConversationID); err != nil {
		return TurnReply{}, fmt.Errorf("%w: invalid conversation_id", errBadRequest)
	}
	if req.MessageID != "" {
		if _, err := uuid.Parse(req.MessageID); err != nil {
			return TurnReply{}, fmt.Errorf("%w: invalid message_id", errBadRequest)
		}
		seen, err := s.store.HasMessage(req.MessageID)
		if err != nil {
			return TurnReply{}, fmt.Errorf("dedup check: %w", err)
		}
		if seen {
			if ack != nil {
				ack(req.MessageID)
			}
			return TurnReply{ConversationID: req.ConversationID, MessageID: req.MessageID, Duplicate: true}, nil
		}
	}

	conv, _, err := s.store.EnsureConversation(req.ConversationID, store.TitleFor(content))
	if err != nil {
		return TurnReply{}, fmt.Errorf("ensure conversation: %w", err)
	}

	// Snapshot the context before the new message lands, so the prompt sees
	// only prior turns and a first turn gets the conversation-start framing.
	total, err := s.store.CountMessages(conv.ID)
	if err != nil {
		return TurnReply{}, fmt.Errorf("count messages: %w", err)
	}
	window, err := s.store.RecentWindow(conv.ID, history.DefaultWindowSize)
	if err != nil {
		return TurnReply{}, fmt.Errorf("load window: %w", err)
	}
	conversationContext := window.Summarize(total)

	student, err := s.store.SaveMessage(store.Message{
		ID:             req.MessageID,
		ConversationID: conv.ID,
		Role:           history.RoleStudent,
		Content:        content,
	})
	if err != nil {
		return TurnReply{}, fmt.Errorf("save student message: %w", err)
	}
	if ack != nil {
		ack(student.ID)
	}
	s.hub.Broadcast(conv.ID, Event{Event: eventReceived, Data: student})

	det := s.detector.Detect(content)
	mathCtx := guard.SummarizeMath(det, s.engine, s.checker)

	var check *answer.Check
	var isCorrect *bool
	if s.orch.DetectFinalAnswer(content, mathCtx) {
		result := s.extractor.CheckAnswer(content, conversationContext)
		check = &result
		isCorrect = &result.Correct
	}

	turn := guard.Turn{
		StudentMessage:  content,
		Context:         conversationContext,
		Math:            mathCtx,
		IsCorrectAnswer: isCorrect,
	}

	started := time.Now()
	result := s.orch.GenerateValidated(ctx, turn)
	generationDuration.Observe(time.Since(started).Seconds())
	observeTurn(result)

	meta, err := json.Marshal(tutorMeta{
		ValidationPassed: result.ValidationPassed,
		Attempts:         result.Attempts,
		Confidence:       result.Confidence,
		GuardEnabled:     true,
	})
	if err != nil {
		return TurnReply{}, fmt.Errorf("marshal tutor metadata: %w", err)
	}

	tutor, err := s.store.SaveMessage(store.Message{
		ConversationID: conv.ID,
		Role:           history.RoleTutor,
		Content:        result.Response,
		MetaJSON:       meta,
	})
	if err != nil {
		return TurnReply{}, fmt.Errorf("save tutor message: %w", err)
	}

	if err := s.store.LogValidation(store.AuditEntry{
		ConversationID: conv.ID,
		MessageID:      tutor.ID,
		Passed:         result.ValidationPassed,
		Attempts:       result.Attempts,
		Confidence:     result.Confidence,
		Reason:         result.Reason,
		FinalAnswer:    result.IsFinalAnswer,
		FallbackUsed:   !result.ValidationPassed,
	}); err != nil {
		s.logger.Warn("audit write failed", "conversation", conv.ID, "error", err)
	}

	s.hub.Broadcast(conv.ID, Event{Event: eventReceived, Data: tutor})

	s.logger.Info("turn completed",
		"conversation", conv.ID,
		"attempts", result.Attempts,
		"validation_passed", result.ValidationPassed,
		"final_answer", result.IsFinalAnswer,
	)

	return TurnReply{
		ConversationID: conv.ID,
		Student:        student,
		Tutor:          tutor,
		Validation: validationSummary{
			Passed:      result.ValidationPassed,
			Attempts:    result.Attempts,
			Confidence:  result.Confidence,
			Reason:      result.Reason,
			FinalAnswer: result.IsFinalAnswer,
		},
		AnswerCheck: check,
	}, nil
}

// #endregion pipeline

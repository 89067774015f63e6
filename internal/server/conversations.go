package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/store"
)

// List pagination bounds.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// #region create
type createConversationRequest struct {
	Title string `json:"title"`
}

// handleCreateConversation opens an empty thread. The body is optional; an
// absent or empty title falls back to the untitled default.
func (s *Server) handleCreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := s.store.CreateConversation("", store.TitleFor(req.Title))
	if err != nil {
		s.logger.Error("create conversation failed", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	respondOK(c, http.StatusCreated, conv)
}

// #endregion create

// #region list
// handleListConversations returns threads ordered by recent activity, each
// with a preview of its latest message.
func (s *Server) handleListConversations(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxListLimit)
	}

	summaries, err := s.store.ListConversations(limit)
	if err != nil {
		s.logger.Error("list conversations failed", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"conversations": summaries, "count": len(summaries)})
}

// #endregion list

// #region messages
// handleConversationMessages returns a thread and its messages in
// chronological order.
func (s *Server) handleConversationMessages(c *gin.Context) {
	id := c.Param("id")

	conv, err := s.store.GetConversation(id)
	if err != nil {
		if store.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "conversation not found")
			return
		}
		s.logger.Error("get conversation failed", "conversation", id, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	messages, err := s.store.ListMessages(id)
	if err != nil {
		s.logger.Error("list messages failed", "conversation", id, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to load messages")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"conversation": conv, "messages": messages, "count": len(messages)})
}

// #endregion messages

// #region delete
// handleDeleteConversation removes a thread and its messages.
func (s *Server) handleDeleteConversation(c *gin.Context) {
	id := c.Param("id")

	if err := s.store.DeleteConversation(id); err != nil {
		if store.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "conversation not found")
			return
		}
		s.logger.Error("delete conversation failed", "conversation", id, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": id})
}

// #endregion delete

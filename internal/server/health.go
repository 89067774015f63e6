package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
)

// #region health
// handleHealth reports liveness plus both capability probes. The endpoint
// always answers 200; degradation shows in the body, never in the status
// code, so load balancers keep routing while the backend limps.
func (s *Server) handleHealth(c *gin.Context) {
	llmHealth := s.client.CheckHealth(c.Request.Context())
	symbolicStatus := s.engine.Health()

	status := "healthy"
	if llmHealth.Status != llm.StatusHealthy || symbolicStatus != "ok" {
		status = "degraded"
	}

	respondOK(c, http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"llm":      llmHealth,
			"symbolic": symbolicStatus,
		},
	})
}

// #endregion health

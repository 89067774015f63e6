// Package server wires the tutoring pipeline to its transports: the JSON
// API, the per-conversation websocket hub, the health probe, and the
// Prometheus metrics endpoint.
package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/answer"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/store"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/symbolic"
)

// #region server
// Server owns the request-scoped composition of the tutoring core.
type Server struct {
	store     *store.Store
	detector  *detect.Detector
	engine    *symbolic.Engine
	checker   *answer.Checker
	extractor *answer.Extractor
	orch      *guard.Orchestrator
	client    llm.Client
	hub       *Hub
	logger    *slog.Logger
}

// Deps carries the collaborators a Server needs. Logger may be nil.
type Deps struct {
	Store     *store.Store
	Detector  *detect.Detector
	Engine    *symbolic.Engine
	Checker   *answer.Checker
	Extractor *answer.Extractor
	Orch      *guard.Orchestrator
	Client    llm.Client
	Logger    *slog.Logger
}

// New builds a Server with a fresh websocket hub.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     d.Store,
		detector:  d.Detector,
		engine:    d.Engine,
		checker:   d.Checker,
		extractor: d.Extractor,
		orch:      d.Orch,
		client:    d.Client,
		hub:       NewHub(logger),
		logger:    logger,
	}
}

// Hub exposes the websocket hub, mainly for lifecycle shutdown.
func (s *Server) Hub() *Hub { return s.hub }

// #endregion server

// #region router
// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws/:conversation", s.handleWebsocket)

	api := router.Group("/api")
	{
		api.POST("/conversations", s.handleCreateConversation)
		api.GET("/conversations", s.handleListConversations)
		api.GET("/conversations/:id/messages", s.handleConversationMessages)
		api.DELETE("/conversations/:id", s.handleDeleteConversation)
		api.POST("/messages", s.handleStudentMessage)
	}
	return router
}

// requestLogger logs one line per request at info level.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// #endregion router

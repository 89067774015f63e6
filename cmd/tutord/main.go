package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/answer"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/config"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/logging"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/server"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/store"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/symbolic"
)

const shutdownTimeout = 10 * time.Second

// #region main
func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(os.Stdout, logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "tutord",
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

	health := genClient.CheckHealth(context.Background())
	logger.Info("llm backend",
		"provider", health.Provider, "model", health.Model, "status", health.Status)

	engine := symbolic.NewEngine()
	validator := guard.NewValidator(judgeClient, logger)

	srv := server.New(server.Deps{
		Store:     st,
		Detector:  detect.NewDetector(cfg.Guard.MinConfidence),
		Engine:    engine,
		Checker:   answer.NewChecker(engine),
		Extractor: answer.NewExtractor(engine),
		Orch:      guard.NewOrchestrator(genClient, validator, cfg.Guard.MaxRetries, logger),
		Client:    genClient,
		Logger:    logger,
	})

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Router()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("tutord listening",
			"addr", cfg.Addr, "db", cfg.DBPath, "judge_model", judgeClient.Model())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		srv.Hub().Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	logger.Info("tutord stopped")
}

// #endregion main

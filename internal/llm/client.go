// Package llm abstracts text generation behind a single Client interface so
// the tutoring pipeline never depends on a concrete provider. Backends map
// their failures onto the package error kinds and report health in a uniform
// shape.
package llm

import (
	"context"
	"fmt"
	"time"
)

// #region types
// Request is a single completion request. A zero Temperature means
// DefaultTemperature; a zero MaxTokens leaves the backend's limit in place.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Health reports backend reachability and whether the configured model is
// actually loadable there.
type Health struct {
	Status    string `json:"status"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Available bool   `json:"model_available"`
	Detail    string `json:"error,omitempty"`
}

// Client generates completions from one configured backend.
type Client interface {
	// Complete returns the completion text for a single prompt.
	Complete(ctx context.Context, req Request) (string, error)
	// CheckHealth reports whether the backend is reachable and the model available.
	CheckHealth(ctx context.Context) Health
	// Name identifies the provider ("ollama", "openai", "mock").
	Name() string
	// Model returns the configured model identifier.
	Model() string
}

// #endregion types

// #region constants
// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Provider names accepted by New.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// DefaultTemperature is the sampling temperature for tutoring turns. The
// judge overrides it with a much lower value.
const DefaultTemperature = 0.7

// DefaultTimeout bounds a single completion call when the caller's context
// carries no deadline of its own.
const DefaultTimeout = 10 * time.Second

// #endregion constants

// #region config
// Config selects and parameterizes a generation backend.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// New builds the configured backend. An empty provider selects ollama.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "", ProviderOllama:
		return NewOllama(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// #endregion config

// withDeadline applies the client timeout unless the caller already set one.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// temperatureOr returns t, or def when the request left it zero.
func temperatureOr(t, def float64) float64 {
	if t == 0 {
		return def
	}
	return t
}

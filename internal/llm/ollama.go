package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// #region defaults
const (
	// DefaultOllamaModel is the local model used when none is configured.
	DefaultOllamaModel = "llama3.2-vision:11b"
	// DefaultOllamaURL is the stock Ollama server address.
	DefaultOllamaURL = "http://localhost:11434"
)

// #endregion defaults

// #region types
// Ollama talks to a local Ollama server over its chat API.
type Ollama struct {
	model   string
	baseURL string
	timeout time.Duration
	httpc   *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// #endregion types

// #region constructor
// NewOllama builds a client for a local Ollama server, filling defaults for
// any Config field left empty.
func NewOllama(cfg Config) *Ollama {
	o := &Ollama{
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		httpc:   &http.Client{},
	}
	if o.model == "" {
		o.model = DefaultOllamaModel
	}
	if o.baseURL == "" {
		o.baseURL = DefaultOllamaURL
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	return o
}

// #endregion constructor

// Name identifies the provider.
func (o *Ollama) Name() string { return ProviderOllama }

// Model returns the configured model identifier.
func (o *Ollama) Model() string { return o.model }

// #region complete
// Complete sends one non-streaming chat call and returns the reply text.
func (o *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := withDeadline(ctx, o.timeout)
	defer cancel()

	msgs := make([]chatMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   false,
		Options: chatOptions{
			Temperature: temperatureOr(req.Temperature, DefaultTemperature),
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpc.Do(httpReq)
	if err != nil {
		return "", o.classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(detail))
		if resp.StatusCode == http.StatusTooManyRequests || strings.Contains(strings.ToLower(msg), "rate limit") {
			return "", fmt.Errorf("%w: %s", ErrRateLimited, msg)
		}
		return "", fmt.Errorf("ollama chat: status %d: %s", resp.StatusCode, msg)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode chat reply: %v", ErrMalformed, err)
	}
	return out.Message.Content, nil
}

// classify maps transport failures onto the package error kinds.
func (o *Ollama) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, o.timeout)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%w: could not connect to %s: %v", ErrNetwork, o.baseURL, uerr.Err)
	}
	return fmt.Errorf("ollama chat: %w", err)
}

// #endregion complete

// #region health
// CheckHealth lists the server's models and verifies the configured one is
// present: reachable with the model loaded is healthy, reachable without it
// is degraded, anything else is unhealthy.
func (o *Ollama) CheckHealth(ctx context.Context) Health {
	h := Health{Provider: ProviderOllama, Model: o.model}

	ctx, cancel := withDeadline(ctx, o.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		h.Status = StatusUnhealthy
		h.Detail = err.Error()
		return h
	}
	resp, err := o.httpc.Do(httpReq)
	if err != nil {
		h.Status = StatusUnhealthy
		h.Detail = fmt.Sprintf("could not connect to %s: %v", o.baseURL, err)
		return h
	}
	defer resp.Body.Close()

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		h.Status = StatusUnhealthy
		h.Detail = fmt.Sprintf("decode model list: %v", err)
		return h
	}

	for _, m := range tags.Models {
		if m.Name == o.model {
			h.Status = StatusHealthy
			h.Available = true
			return h
		}
	}
	h.Status = StatusDegraded
	h.Detail = fmt.Sprintf("Model %s not found", o.model)
	return h
}

// #endregion health

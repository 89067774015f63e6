package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// #region types
// OpenAI talks to any OpenAI-compatible chat completion endpoint. With a
// BaseURL override it also serves local servers that speak the same API.
type OpenAI struct {
	model   string
	timeout time.Duration
	client  *openai.Client
}

// #endregion types

// #region constructor
// NewOpenAI builds a client for an OpenAI-compatible endpoint. Unlike the
// ollama backend there is no default model, so one must be configured.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai provider requires a model")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAI{
		model:   cfg.Model,
		timeout: timeout,
		client:  openai.NewClientWithConfig(oc),
	}, nil
}

// #endregion constructor

// Name identifies the provider.
func (c *OpenAI) Name() string { return ProviderOpenAI }

// Model returns the configured model identifier.
func (c *OpenAI) Model() string { return c.model }

// #region complete
// Complete sends one chat completion call and returns the first choice.
func (c *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := withDeadline(ctx, c.timeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: float32(temperatureOr(req.Temperature, DefaultTemperature)),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", c.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion without choices", ErrMalformed)
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps go-openai failures onto the package error kinds.
func (c *OpenAI) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return fmt.Errorf("chat completion: %w", err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return fmt.Errorf("chat completion: %w", err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "rate limit") {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// #endregion complete

// #region health
// CheckHealth lists the endpoint's models and verifies the configured one is
// served there.
func (c *OpenAI) CheckHealth(ctx context.Context) Health {
	h := Health{Provider: ProviderOpenAI, Model: c.model}

	ctx, cancel := withDeadline(ctx, c.timeout)
	defer cancel()

	models, err := c.client.ListModels(ctx)
	if err != nil {
		h.Status = StatusUnhealthy
		h.Detail = err.Error()
		return h
	}
	for _, m := range models.Models {
		if m.ID == c.model {
			h.Status = StatusHealthy
			h.Available = true
			return h
		}
	}
	h.Status = StatusDegraded
	h.Detail = fmt.Sprintf("Model %s not found", c.model)
	return h
}

// #endregion health

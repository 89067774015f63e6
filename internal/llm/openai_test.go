package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// #region helpers
func completionServer(t *testing.T, reply string, inspect func(openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(req)
		}
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: reply}},
			},
		})
	}))
}

func newTestOpenAI(t *testing.T, baseURL string, timeout time.Duration) *OpenAI {
	t.Helper()
	c, err := NewOpenAI(Config{
		Model:   "gpt-4o-mini",
		APIKey:  "sk-test",
		BaseURL: baseURL,
		Timeout: timeout,
	})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	return c
}

// #endregion helpers

// #region complete-tests
func TestOpenAIComplete_Success(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := completionServer(t, "What would isolate x here?", func(req openai.ChatCompletionRequest) { seen = req })
	defer srv.Close()

	c := newTestOpenAI(t, srv.URL, 0)
	got, err := c.Complete(context.Background(), Request{
		System:      "You are a patient math tutor.",
		Prompt:      "Student says: is x = 5 the answer?",
		Temperature: 0.2,
		MaxTokens:   200,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "What would isolate x here?" {
		t.Errorf("expected reply text, got %q", got)
	}
	if seen.Model != "gpt-4o-mini" {
		t.Errorf("expected configured model, got %q", seen.Model)
	}
	if len(seen.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(seen.Messages))
	}
	if seen.Messages[0].Role != "system" {
		t.Errorf("expected first message role system, got %q", seen.Messages[0].Role)
	}
	if seen.Messages[1].Role != "user" {
		t.Errorf("expected second message role user, got %q", seen.Messages[1].Role)
	}
	if seen.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %f", seen.Temperature)
	}
	if seen.MaxTokens != 200 {
		t.Errorf("expected max_tokens 200, got %d", seen.MaxTokens)
	}
}

func TestOpenAIComplete_NoSystemPrompt(t *testing.T) {
	var seen openai.ChatCompletionRequest
	srv := completionServer(t, "ok", func(req openai.ChatCompletionRequest) { seen = req })
	defer srv.Close()

	c := newTestOpenAI(t, srv.URL, 0)
	if _, err := c.Complete(context.Background(), Request{Prompt: "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(seen.Messages))
	}
	if seen.Messages[0].Role != "user" {
		t.Errorf("expected role user, got %q", seen.Messages[0].Role)
	}
}

func TestOpenAIComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestOpenAI(t, srv.URL, 50*time.Millisecond)
	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestOpenAIComplete_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestOpenAI(t, srv.URL, 0)
	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestOpenAIComplete_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestOpenAI(t, srv.URL, 0)
	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestOpenAIComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer srv.Close()

	c := newTestOpenAI(t, srv.URL, 0)
	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

// #endregion complete-tests

// #region health-tests
func TestOpenAICheckHealth_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("expected path /models, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini"},{"id":"gpt-4o"}]}`))
	}))
	defer srv.Close()

	c := newTestOpenAI(t, srv.URL, 0)
	h := c.CheckHealth(context.Background())
	if h.Status != StatusHealthy {
		t.Errorf("expected healthy, got %q (%s)", h.Status, h.Detail)
	}
	if !h.Available {
		t.Error("expected model available")
	}
	if h.Provider != ProviderOpenAI {
		t.Errorf("expected provider openai, got %q", h.Provider)
	}
}

func TestOpenAICheckHealth_ModelMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o"}]}`))
	}))
	defer srv.Close()

	c := newTestOpenAI(t, srv.URL, 0)
	h := c.CheckHealth(context.Background())
	if h.Status != StatusDegraded {
		t.Errorf("expected degraded, got %q", h.Status)
	}
	if !strings.Contains(h.Detail, "not found") {
		t.Errorf("expected not-found detail, got %q", h.Detail)
	}
}

func TestOpenAICheckHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestOpenAI(t, srv.URL, 0)
	h := c.CheckHealth(context.Background())
	if h.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %q", h.Status)
	}
	if h.Detail == "" {
		t.Error("expected a detail message")
	}
}

// #endregion health-tests

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tutor.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.Addr)
	}
	if cfg.DBPath != "tutor.db" {
		t.Errorf("expected db path tutor.db, got %q", cfg.DBPath)
	}
	if cfg.LLM.Provider != llm.ProviderOllama {
		t.Errorf("expected ollama provider, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != llm.DefaultOllamaModel {
		t.Errorf("expected default model, got %q", cfg.LLM.Model)
	}
	if time.Duration(cfg.LLM.Timeout) != llm.DefaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.LLM.Timeout)
	}
	if cfg.Guard.MaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.Guard.MaxRetries)
	}
	if cfg.Guard.MinConfidence != 0.6 {
		t.Errorf("expected min confidence 0.6, got %v", cfg.Guard.MinConfidence)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("expected info/json logging, got %q/%q", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load with empty path: %v", err)
	}
	if cfg.Addr != Default().Addr {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: test-key
  timeout: 30s
guard:
  max_retries: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %q", cfg.Addr)
	}
	if cfg.LLM.Provider != llm.ProviderOpenAI {
		t.Errorf("expected openai provider, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected file model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Errorf("expected file api key, got %q", cfg.LLM.APIKey)
	}
	if time.Duration(cfg.LLM.Timeout) != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", time.Duration(cfg.LLM.Timeout))
	}
	if cfg.Guard.MaxRetries != 5 {
		t.Errorf("expected 5 retries, got %d", cfg.Guard.MaxRetries)
	}

	// Unset keys keep their defaults.
	if cfg.DBPath != "tutor.db" {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Guard.MinConfidence != 0.6 {
		t.Errorf("expected default min confidence, got %v", cfg.Guard.MinConfidence)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected default log format, got %q", cfg.Log.Format)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "addr: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "llm:\n  timeout: fast\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected duration error")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("expected invalid duration in error, got %v", err)
	}
}

func TestEnvOverridesBeatFile(t *testing.T) {
	path := writeConfig(t, "addr: \":9090\"\n")
	t.Setenv(EnvAddr, ":7070")
	t.Setenv(EnvMaxRetries, "7")
	t.Setenv(EnvMinConfidence, "0.8")
	t.Setenv(EnvTimeout, "45s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("expected env addr to win, got %q", cfg.Addr)
	}
	if cfg.Guard.MaxRetries != 7 {
		t.Errorf("expected 7 retries, got %d", cfg.Guard.MaxRetries)
	}
	if cfg.Guard.MinConfidence != 0.8 {
		t.Errorf("expected min confidence 0.8, got %v", cfg.Guard.MinConfidence)
	}
	if time.Duration(cfg.LLM.Timeout) != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", time.Duration(cfg.LLM.Timeout))
	}
}

func TestEnvBadNumberFails(t *testing.T) {
	t.Setenv(EnvMaxRetries, "many")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric retries")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "mistral" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero retries", func(c *Config) { c.Guard.MaxRetries = 0 }},
		{"confidence above one", func(c *Config) { c.Guard.MinConfidence = 1.5 }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestJudgeConfigReusesBackend(t *testing.T) {
	cfg := Default()
	if got := cfg.JudgeConfig().Model; got != cfg.LLM.Model {
		t.Errorf("expected judge to reuse generation model, got %q", got)
	}

	cfg.LLM.JudgeModel = "phi3:mini"
	jc := cfg.JudgeConfig()
	if jc.Model != "phi3:mini" {
		t.Errorf("expected judge model override, got %q", jc.Model)
	}
	if jc.BaseURL != cfg.LLM.BaseURL {
		t.Errorf("expected judge to share base url, got %q", jc.BaseURL)
	}
}

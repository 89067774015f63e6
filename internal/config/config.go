// Package config loads tutord settings from an optional YAML file layered
// under environment overrides. Every knob has a default, so an empty
// configuration still boots a working local server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/detect"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/llm"
)

// #region types
// Config is the full tutord configuration tree.
type Config struct {
	Addr   string      `yaml:"addr"`
	DBPath string      `yaml:"db_path"`
	LLM    LLMConfig   `yaml:"llm"`
	Guard  GuardConfig `yaml:"guard"`
	Log    LogConfig   `yaml:"log"`
}

// LLMConfig selects the generation backend shared by the tutor and the
// validation judge.
type LLMConfig struct {
	Provider string   `yaml:"provider"`
	Model    string   `yaml:"model"`
	BaseURL  string   `yaml:"base_url"`
	APIKey   string   `yaml:"api_key"`
	Timeout  Duration `yaml:"timeout"`
	// JudgeModel, when set, runs the validation judge on a different model
	// than the tutor. Empty reuses Model.
	JudgeModel string `yaml:"judge_model"`
}

// GuardConfig tunes the validation loop.
type GuardConfig struct {
	MaxRetries    int     `yaml:"max_retries"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// LogConfig shapes the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// #endregion types

// #region duration
// Duration accepts YAML duration strings such as "30s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// #endregion duration

// #region defaults
// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Addr:   ":8080",
		DBPath: "tutor.db",
		LLM: LLMConfig{
			Provider: llm.ProviderOllama,
			Model:    llm.DefaultOllamaModel,
			BaseURL:  llm.DefaultOllamaURL,
			Timeout:  Duration(llm.DefaultTimeout),
		},
		Guard: GuardConfig{
			MaxRetries:    guard.DefaultMaxRetries,
			MinConfidence: detect.DefaultMinConfidence,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// #endregion defaults

// #region load
// Load builds the effective configuration: defaults, then the YAML file at
// path when one is named, then environment overrides. An empty path skips
// the file; a named file must exist and parse.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate rejects values no component could run with.
func (c Config) validate() error {
	switch c.LLM.Provider {
	case "", llm.ProviderOllama, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Guard.MaxRetries <= 0 {
		return fmt.Errorf("guard.max_retries must be positive, got %d", c.Guard.MaxRetries)
	}
	if c.Guard.MinConfidence <= 0 || c.Guard.MinConfidence > 1 {
		return fmt.Errorf("guard.min_confidence %v outside (0, 1]", c.Guard.MinConfidence)
	}
	return nil
}

// #endregion load

// #region clients
// ClientConfig returns the llm settings for tutor generation.
func (c Config) ClientConfig() llm.Config {
	return llm.Config{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
		APIKey:   c.LLM.APIKey,
		Timeout:  time.Duration(c.LLM.Timeout),
	}
}

// JudgeConfig returns the llm settings for the validation judge, which may
// run a different model on the same backend.
func (c Config) JudgeConfig() llm.Config {
	jc := c.ClientConfig()
	if c.LLM.JudgeModel != "" {
		jc.Model = c.LLM.JudgeModel
	}
	return jc
}

// #endregion clients

// #region env
// Environment override keys. Each one, when set and non-empty, wins over
// both the defaults and the file.
const (
	EnvAddr          = "TUTOR_ADDR"
	EnvDB            = "TUTOR_DB"
	EnvProvider      = "TUTOR_LLM_PROVIDER"
	EnvModel         = "TUTOR_LLM_MODEL"
	EnvBaseURL       = "TUTOR_LLM_BASE_URL"
	EnvAPIKey        = "TUTOR_LLM_API_KEY"
	EnvTimeout       = "TUTOR_LLM_TIMEOUT"
	EnvJudgeModel    = "TUTOR_JUDGE_MODEL"
	EnvMaxRetries    = "TUTOR_MAX_RETRIES"
	EnvMinConfidence = "TUTOR_MIN_CONFIDENCE"
	EnvLogLevel      = "TUTOR_LOG_LEVEL"
	EnvLogFormat     = "TUTOR_LOG_FORMAT"
)

func applyEnv(cfg *Config) error {
	cfg.Addr = envOr(EnvAddr, cfg.Addr)
	cfg.DBPath = envOr(EnvDB, cfg.DBPath)
	cfg.LLM.Provider = envOr(EnvProvider, cfg.LLM.Provider)
	cfg.LLM.Model = envOr(EnvModel, cfg.LLM.Model)
	cfg.LLM.BaseURL = envOr(EnvBaseURL, cfg.LLM.BaseURL)
	cfg.LLM.APIKey = envOr(EnvAPIKey, cfg.LLM.APIKey)
	cfg.LLM.JudgeModel = envOr(EnvJudgeModel, cfg.LLM.JudgeModel)
	cfg.Log.Level = envOr(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Format = envOr(EnvLogFormat, cfg.Log.Format)

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTimeout, err)
		}
		cfg.LLM.Timeout = Duration(d)
	}
	if v := os.Getenv(EnvMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvMaxRetries, err)
		}
		cfg.Guard.MaxRetries = n
	}
	if v := os.Getenv(EnvMinConfidence); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvMinConfidence, err)
		}
		cfg.Guard.MinConfidence = f
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion env

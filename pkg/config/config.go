// Package config loads sql-assistant configuration from a YAML or JSON file
// with environment variable overrides. Secrets only come from the environment.
package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Output formats accepted by the CLI.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config represents the configuration for the assistant.
type Config struct {
	LLM   LLMConfig   `yaml:"llm"   json:"llm"`
	Judge JudgeConfig `yaml:"judge" json:"judge"`

	Dialect string `yaml:"dialect" json:"dialect" env:"SQL_ASSISTANT_DIALECT" env-default:"postgresql"`
	Output  string `yaml:"output"  json:"output"  env:"SQL_ASSISTANT_OUTPUT"  env-default:"text"`
	// Catalog is an optional path to a schema catalog file.
	Catalog string `yaml:"catalog" json:"catalog" env:"SQL_ASSISTANT_CATALOG"`
}

// LLMConfig configures the model that generates SQL.
type LLMConfig struct {
	Provider    string        `yaml:"provider"    json:"provider"    env:"SQL_ASSISTANT_LLM_PROVIDER"    env-default:"openai"`
	Endpoint    string        `yaml:"endpoint"    json:"endpoint"    env:"SQL_ASSISTANT_LLM_ENDPOINT"`
	Model       string        `yaml:"model"       json:"model"       env:"SQL_ASSISTANT_LLM_MODEL"       env-default:"gpt-4o-mini"`
	APIKey      string        `yaml:"-"           json:"-"           env:"SQL_ASSISTANT_LLM_API_KEY"`
	Temperature float64       `yaml:"temperature" json:"temperature" env:"SQL_ASSISTANT_LLM_TEMPERATURE"`
	MaxTokens   int           `yaml:"max_tokens"  json:"max_tokens"  env:"SQL_ASSISTANT_LLM_MAX_TOKENS"  env-default:"1024"`
	Timeout     time.Duration `yaml:"timeout"     json:"timeout"     env:"SQL_ASSISTANT_LLM_TIMEOUT"     env-default:"60s"`
}

// JudgeConfig configures the model that grades responses. Empty fields fall
// back to the LLM settings.
type JudgeConfig struct {
	Provider   string `yaml:"provider"    json:"provider"    env:"SQL_ASSISTANT_JUDGE_PROVIDER"`
	Endpoint   string `yaml:"endpoint"    json:"endpoint"    env:"SQL_ASSISTANT_JUDGE_ENDPOINT"`
	Model      string `yaml:"model"       json:"model"       env:"SQL_ASSISTANT_JUDGE_MODEL"`
	APIKey     string `yaml:"-"           json:"-"           env:"SQL_ASSISTANT_JUDGE_API_KEY"`
	MaxRetries int    `yaml:"max_retries" json:"max_retries" env:"SQL_ASSISTANT_JUDGE_MAX_RETRIES" env-default:"0"`
}

// DefaultTemperature is the generator temperature when none is configured.
const DefaultTemperature = 0.2

// Default returns the defaults that a zero value cannot express. Everything
// else is defaulted by the env-default tags.
func Default() *Config {
	return &Config{LLM: LLMConfig{Temperature: DefaultTemperature}}
}

// Load reads filename (optional) and applies environment overrides and defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		loaded, err := LoadFromFile(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", filename)
		}
		cfg = loaded
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file without applying the environment.
func LoadFromFile(filename string) (*Config, error) {
	slog.Debug("Loading config from file", "filename", filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		slog.Debug("Failed to read file", "error", err)
		return nil, err
	}

	config := *Default()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Debug("YAML unmarshal failed", "error", err)
		if err := json.Unmarshal(data, &config); err != nil {
			slog.Debug("JSON unmarshal failed", "error", err)
			return nil, err
		}
		slog.Debug("JSON unmarshal succeeded")
	} else {
		slog.Debug("YAML unmarshal succeeded")
	}

	return &config, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := c.ParsedDialect(); err != nil {
		return err
	}
	if _, err := llm.ParseProvider(c.LLM.Provider); err != nil {
		return err
	}
	if c.Judge.Provider != "" {
		if _, err := llm.ParseProvider(c.Judge.Provider); err != nil {
			return errors.Wrap(err, "judge")
		}
	}
	switch strings.ToLower(c.Output) {
	case "", OutputText, OutputJSON, OutputYAML:
	default:
		return errors.Errorf("unsupported output format: %s", c.Output)
	}
	if c.Judge.MaxRetries < 0 {
		return errors.Errorf("judge max_retries must not be negative, got %d", c.Judge.MaxRetries)
	}
	return nil
}

// ParsedDialect returns the configured SQL dialect.
func (c *Config) ParsedDialect() (types.Dialect, error) {
	return types.ParseDialect(c.Dialect)
}

// LLMClientConfig returns the client configuration for SQL generation.
func (c *Config) LLMClientConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.LLM.Provider)
	if err != nil {
		return nil, err
	}
	return &llm.Config{
		Provider:    provider,
		Endpoint:    c.LLM.Endpoint,
		Model:       c.LLM.Model,
		APIKey:      c.LLM.APIKey,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Timeout:     c.LLM.Timeout,
	}, nil
}

// JudgeClientConfig returns the client configuration for grading. The judge
// always runs at temperature 0.
func (c *Config) JudgeClientConfig() (*llm.Config, error) {
	cfg, err := c.LLMClientConfig()
	if err != nil {
		return nil, err
	}
	cfg.Temperature = 0

	if c.Judge.Provider != "" {
		provider, err := llm.ParseProvider(c.Judge.Provider)
		if err != nil {
			return nil, err
		}
		if provider != cfg.Provider {
			// A different provider never shares the generator's endpoint or key.
			cfg.Endpoint = ""
			cfg.APIKey = ""
		}
		cfg.Provider = provider
	}
	if c.Judge.Endpoint != "" {
		cfg.Endpoint = c.Judge.Endpoint
	}
	if c.Judge.Model != "" {
		cfg.Model = c.Judge.Model
	}
	if c.Judge.APIKey != "" {
		cfg.APIKey = c.Judge.APIKey
	}
	return cfg, nil
}

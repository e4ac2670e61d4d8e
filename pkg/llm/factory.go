package llm

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Provider names an LLM backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config holds configuration for creating an LLM client.
type Config struct {
	Provider    Provider
	Endpoint    string // Base URL; empty uses the provider default
	Model       string
	APIKey      string // Optional for local OpenAI-compatible endpoints
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// ParseProvider accepts a provider name case-insensitively. Empty means openai.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "openai":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	}
	return "", errors.Errorf("unsupported LLM provider: %s", s)
}

// New creates a client for cfg.Provider.
func New(cfg *Config, logger *zap.Logger) (Client, error) {
	if cfg == nil {
		return nil, errors.New("llm config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	}
	return nil, errors.Errorf("unsupported LLM provider: %s", cfg.Provider)
}

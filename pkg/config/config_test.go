package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgresql", cfg.Dialect)
	assert.Equal(t, OutputText, cfg.Output)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0, cfg.Judge.MaxRetries)
}

func TestLoad_ExplicitZeroTemperature(t *testing.T) {
	path := writeFile(t, "config.yaml", "llm:\n  temperature: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.LLM.Temperature)

	path = writeFile(t, "config.yaml", "llm:\n  model: gpt-4o\n")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.InDelta(t, DefaultTemperature, cfg.LLM.Temperature, 1e-9)

	t.Setenv("SQL_ASSISTANT_LLM_TEMPERATURE", "0.5")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cfg.LLM.Temperature, 1e-9)
}

func TestLoad_YAMLFileWithEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", `
dialect: mysql
output: json
llm:
  provider: anthropic
  model: claude-sonnet
  timeout: 15s
judge:
  model: claude-haiku
  max_retries: 2
`)
	t.Setenv("SQL_ASSISTANT_LLM_API_KEY", "secret")
	t.Setenv("SQL_ASSISTANT_OUTPUT", "yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Dialect)
	assert.Equal(t, OutputYAML, cfg.Output)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Model)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, 2, cfg.Judge.MaxRetries)

	dialect, err := cfg.ParsedDialect()
	require.NoError(t, err)
	assert.Equal(t, types.Dialect_MYSQL, dialect)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"dialect": "sqlite", "llm": {"model": "llama3", "endpoint": "http://localhost:11434/v1"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Dialect)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.Endpoint)
}

func TestLoad_APIKeyIgnoredInFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "llm:\n  api_key: from-file\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "dialect: cobol\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad-output.yaml", "output: xml\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad-provider.yaml", "judge:\n  provider: cohere\n"))
	assert.Error(t, err)
}

func TestJudgeClientConfig(t *testing.T) {
	cfg := &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Endpoint:    "https://api.openai.com/v1",
			Model:       "gpt-4o",
			APIKey:      "openai-key",
			Temperature: 0.7,
		},
	}

	judge, err := cfg.JudgeClientConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, judge.Provider)
	assert.Equal(t, "gpt-4o", judge.Model)
	assert.Equal(t, "openai-key", judge.APIKey)
	assert.Zero(t, judge.Temperature)

	cfg.Judge = JudgeConfig{Provider: "anthropic", Model: "claude-haiku", APIKey: "anthropic-key"}
	judge, err = cfg.JudgeClientConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderAnthropic, judge.Provider)
	assert.Equal(t, "claude-haiku", judge.Model)
	assert.Equal(t, "anthropic-key", judge.APIKey)
	assert.Empty(t, judge.Endpoint)

	generator, err := cfg.LLMClientConfig()
	require.NoError(t, err)
	assert.InDelta(t, 0.7, generator.Temperature, 1e-9)
}

func TestLoadCatalog(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
tables:
  invoices:
    commonColumns: [id, number, amount]
    relationships: ["Many-to-one with customers"]
    examples: ["SELECT number, amount FROM invoices"]
`)

	tables, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Contains(t, tables, "invoices")
	assert.Equal(t, []string{"id", "number", "amount"}, tables["invoices"].CommonColumns)

	jsonPath := writeFile(t, "catalog.json", `{"tables": {"payments": {"commonColumns": ["id"]}}}`)
	tables, err = LoadCatalog(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, tables["payments"].CommonColumns)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadCatalog(writeFile(t, "broken.yaml", "tables: [\n"))
	assert.Error(t, err)
}

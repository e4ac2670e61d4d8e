package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/logger"
)

// zapLogger returns the adapter logger at the CLI's log level.
func zapLogger() *zap.Logger {
	z, err := logger.NewZap(logger.LevelFromFlags(viper.GetBool("verbose"), viper.GetBool("debug")))
	if err != nil {
		return zap.NewNop()
	}
	return z
}

// newCompleter builds the client that generates SQL.
func newCompleter(z *zap.Logger) (llm.Client, error) {
	cfg, err := appConfig.LLMClientConfig()
	if err != nil {
		return nil, err
	}
	client, err := llm.New(cfg, z)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LLM client")
	}
	return client, nil
}

// newJudge builds the grading client, wrapped with retries when configured.
func newJudge(z *zap.Logger) (llm.Judge, error) {
	cfg, err := appConfig.JudgeClientConfig()
	if err != nil {
		return nil, err
	}
	client, err := llm.New(cfg, z.Named("judge"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create judge client")
	}
	return llm.WithRetry(client, appConfig.Judge.MaxRetries), nil
}

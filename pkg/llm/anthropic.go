package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicClient talks to the Anthropic Messages API. It has no native JSON
// mode, so Judge embeds the schema in the prompt and extracts the object.
type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

var _ Client = (*AnthropicClient)(nil)

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, NewError(ErrorTypeModel, "model is required", false, nil)
	}
	if cfg.APIKey == "" {
		return nil, NewError(ErrorTypeAuth, "api key is required", false, nil)
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	return &AnthropicClient{
		client:      anthropic.NewClient(cfg.APIKey, opts...),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   maxTokens,
		timeout:     cfg.Timeout,
		logger:      logger.Named("llm.anthropic"),
	}, nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}

func (c *AnthropicClient) request(prompt, system string) anthropic.MessagesRequest {
	temperature := c.temperature
	return anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      system,
		MaxTokens:   c.maxTokens,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	}
}

func (c *AnthropicClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// Complete implements Completer.
func (c *AnthropicClient) Complete(ctx context.Context, prompt, system string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := c.client.CreateMessages(ctx, c.request(prompt, system))
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", c.classify(err)
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.InputTokens),
		zap.Int("completion_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return textContent(resp), nil
}

// Stream implements Completer.
func (c *AnthropicClient) Stream(ctx context.Context, prompt, system string, onChunk func(string)) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var content strings.Builder
	start := time.Now()
	_, err := c.client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
		MessagesRequest: c.request(prompt, system),
		OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
			if data.Delta.Text == nil || *data.Delta.Text == "" {
				return
			}
			content.WriteString(*data.Delta.Text)
			if onChunk != nil {
				onChunk(*data.Delta.Text)
			}
		},
	})
	if err != nil {
		c.logger.Error("LLM stream failed",
			zap.Int("received_len", content.Len()),
			zap.Error(err))
		return content.String(), c.classify(err)
	}

	c.logger.Info("LLM stream completed",
		zap.Int("content_len", content.Len()),
		zap.Duration("elapsed", time.Since(start)))

	return content.String(), nil
}

// Judge implements Judge.
func (c *AnthropicClient) Judge(ctx context.Context, prompt string, schema OutputSchema) (json.RawMessage, error) {
	text, err := c.Complete(ctx, prompt+"\n\n"+schema.Instructions(), judgeSystemMessage)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		c.logger.Warn("Judge returned no JSON object",
			zap.String("schema", schema.Name),
			zap.Int("response_len", len(text)))
		return nil, err
	}
	return raw, nil
}

func (c *AnthropicClient) classify(err error) error {
	llmErr := ClassifyError(err)
	llmErr.Model = c.model
	return llmErr
}

func textContent(resp anthropic.MessagesResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			b.WriteString(*block.Text)
		}
	}
	return b.String()
}

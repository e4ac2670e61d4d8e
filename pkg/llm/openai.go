package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, NewError(ErrorTypeModel, "model is required", false, nil)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger.Named("llm.openai"),
	}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) request(prompt, system string) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	// go-openai drops a zero temperature from the request, which leaves the
	// server default in place. The smallest positive value keeps it greedy.
	temperature := c.temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	}
}

func (c *OpenAIClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// Complete implements Completer.
func (c *OpenAIClient) Complete(ctx context.Context, prompt, system string) (string, error) {
	return c.complete(ctx, c.request(prompt, system))
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(req.Messages[len(req.Messages)-1].Content)))

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", c.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Type: ErrorTypeResponse, Message: "no choices in response", Retryable: true, Model: c.model}
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Stream implements Completer.
func (c *OpenAIClient) Stream(ctx context.Context, prompt, system string, onChunk func(string)) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req := c.request(prompt, system)
	req.Stream = true

	start := time.Now()
	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		c.logger.Error("LLM stream failed to start", zap.Error(err))
		return "", c.classify(err)
	}
	defer stream.Close()

	var content strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.logger.Error("LLM stream interrupted",
				zap.Int("received_len", content.Len()),
				zap.Error(err))
			return content.String(), c.classify(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		chunk := resp.Choices[0].Delta.Content
		if chunk == "" {
			continue
		}
		content.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	c.logger.Info("LLM stream completed",
		zap.Int("content_len", content.Len()),
		zap.Duration("elapsed", time.Since(start)))

	return content.String(), nil
}

// Judge implements Judge using the JSON object response format.
func (c *OpenAIClient) Judge(ctx context.Context, prompt string, schema OutputSchema) (json.RawMessage, error) {
	req := c.request(prompt+"\n\n"+schema.Instructions(), judgeSystemMessage)
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}

	text, err := c.complete(ctx, req)
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

func (c *OpenAIClient) classify(err error) error {
	llmErr := ClassifyError(err)
	llmErr.Model = c.model
	return llmErr
}

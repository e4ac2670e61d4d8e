package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockClient is a configurable Client for tests. Set the function fields to
// control behavior. It is safe for concurrent use.
type MockClient struct {
	// CompleteFunc is called by Complete. If nil, returns "" and nil error.
	CompleteFunc func(ctx context.Context, prompt, system string) (string, error)

	// StreamFunc is called by Stream. If nil, Stream falls back to Complete
	// and delivers the result as a single chunk.
	StreamFunc func(ctx context.Context, prompt, system string, onChunk func(string)) (string, error)

	// JudgeFunc is called by Judge. If nil, returns an empty JSON object.
	JudgeFunc func(ctx context.Context, prompt string, schema OutputSchema) (json.RawMessage, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	mu            sync.Mutex
	completeCalls int
	streamCalls   int
	judgeCalls    int
	judgePrompts  []string
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{ModelName: "mock-model"}
}

// Complete implements Completer.
func (m *MockClient) Complete(ctx context.Context, prompt, system string) (string, error) {
	m.mu.Lock()
	m.completeCalls++
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, system)
	}
	return "", nil
}

// Stream implements Completer.
func (m *MockClient) Stream(ctx context.Context, prompt, system string, onChunk func(string)) (string, error) {
	m.mu.Lock()
	m.streamCalls++
	m.mu.Unlock()

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, prompt, system, onChunk)
	}
	text, err := m.Complete(ctx, prompt, system)
	if err == nil && text != "" && onChunk != nil {
		onChunk(text)
	}
	return text, err
}

// Judge implements Judge.
func (m *MockClient) Judge(ctx context.Context, prompt string, schema OutputSchema) (json.RawMessage, error) {
	m.mu.Lock()
	m.judgeCalls++
	m.judgePrompts = append(m.judgePrompts, prompt)
	m.mu.Unlock()

	if m.JudgeFunc != nil {
		return m.JudgeFunc(ctx, prompt, schema)
	}
	return json.RawMessage(`{}`), nil
}

// Model implements Client.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// CompleteCalls returns how many times Complete was invoked.
func (m *MockClient) CompleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completeCalls
}

// StreamCalls returns how many times Stream was invoked.
func (m *MockClient) StreamCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamCalls
}

// JudgeCalls returns how many times Judge was invoked.
func (m *MockClient) JudgeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.judgeCalls
}

// JudgePrompts returns a copy of every prompt passed to Judge.
func (m *MockClient) JudgePrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.judgePrompts...)
}

// StaticJudge returns a JudgeFunc that always answers with verdict.
func StaticJudge(verdict string) func(context.Context, string, OutputSchema) (json.RawMessage, error) {
	return func(context.Context, string, OutputSchema) (json.RawMessage, error) {
		return json.RawMessage(verdict), nil
	}
}

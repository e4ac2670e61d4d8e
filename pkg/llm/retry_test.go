package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantRetry(judge Judge, maxRetries int) *RetryingJudge {
	r := WithRetry(judge, maxRetries).(*RetryingJudge)
	r.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return r
}

func TestWithRetry_Disabled(t *testing.T) {
	mock := NewMockClient()
	assert.Same(t, mock, WithRetry(mock, 0))
}

func TestWithRetry_RecoversFromRetryableErrors(t *testing.T) {
	mock := NewMockClient()
	mock.JudgeFunc = func(ctx context.Context, prompt string, schema OutputSchema) (json.RawMessage, error) {
		if mock.JudgeCalls() < 3 {
			return nil, NewError(ErrorTypeEndpoint, "server error", true, nil)
		}
		return json.RawMessage(`{"ok":true}`), nil
	}

	raw, err := instantRetry(mock, 3).Judge(context.Background(), "p", OutputSchema{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, 3, mock.JudgeCalls())
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	authErr := NewError(ErrorTypeAuth, "authentication failed", false, nil)
	mock := NewMockClient()
	mock.JudgeFunc = func(context.Context, string, OutputSchema) (json.RawMessage, error) {
		return nil, authErr
	}

	_, err := instantRetry(mock, 5).Judge(context.Background(), "p", OutputSchema{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, authErr))
	assert.Equal(t, 1, mock.JudgeCalls())
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := NewMockClient()
	mock.JudgeFunc = func(context.Context, string, OutputSchema) (json.RawMessage, error) {
		return nil, NewError(ErrorTypeUnknown, "rate limited", true, nil)
	}

	_, err := instantRetry(mock, 2).Judge(context.Background(), "p", OutputSchema{})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 3, mock.JudgeCalls())
}

package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryingJudge retries a Judge on errors classified as retryable.
type RetryingJudge struct {
	next       Judge
	maxRetries int
	newBackOff func() backoff.BackOff
}

// WithRetry wraps judge with exponential backoff. maxRetries <= 0 returns
// judge unchanged.
func WithRetry(judge Judge, maxRetries int) Judge {
	if maxRetries <= 0 {
		return judge
	}
	return &RetryingJudge{
		next:       judge,
		maxRetries: maxRetries,
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = time.Minute
	return b
}

// Judge implements Judge.
func (r *RetryingJudge) Judge(ctx context.Context, prompt string, schema OutputSchema) (json.RawMessage, error) {
	var out json.RawMessage
	operation := func() error {
		raw, err := r.next.Judge(ctx, prompt, schema)
		if err != nil {
			if IsRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		out = raw
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return out, nil
}

package llm

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/rxdrill/internal/retry"
)

// RetryProvider is a decorator that retries transient errors on the
// shared retry policy. Rate limits wait for the provider's RetryAfter
// when one is given.
type RetryProvider struct {
	inner  Provider
	policy retry.Policy
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, policy retry.Policy) Provider {
	return &RetryProvider{inner: p, policy: policy}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	invalidRetried := false
	return retry.Do(ctx, r.policy, func() (*Response, error) {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		// Invalid output is worth exactly one more try.
		var invResp *ErrInvalidResponse
		if errors.As(err, &invResp) {
			if invalidRetried {
				return nil, retry.Permanent(err)
			}
			invalidRetried = true
			return nil, err
		}
		if !transient(err) {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}, retry.WithWaitHint(rateLimitWait))
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func rateLimitWait(err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}

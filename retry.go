package sqlbot

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// retryProvider wraps a Provider so a provider outage — the LLM backend
// rate-limiting or briefly unavailable — doesn't fail a chat turn outright.
// Transient HTTP errors (429 Too Many Requests, 503 Service Unavailable) are
// retried with exponential backoff; anything else passes through on the
// first attempt.
type retryProvider struct {
	inner     Provider
	baseDelay time.Duration
}

// outageMaxAttempts bounds a provider outage to at most two retries beyond
// the initial attempt before the failure is surfaced to the caller.
const outageMaxAttempts = 3

// defaultOutageBaseDelay is the backoff delay before the second attempt;
// each subsequent attempt doubles it.
const defaultOutageBaseDelay = time.Second

// RetryOption configures a retryProvider.
type RetryOption func(*retryProvider)

// RetryBaseDelay overrides the backoff delay ahead of the second attempt.
// Tests use this to run the retry loop without sleeping.
func RetryBaseDelay(d time.Duration) RetryOption {
	return func(r *retryProvider) { r.baseDelay = d }
}

// WithRetry wraps p so a provider outage is retried up to twice with
// exponential backoff before the turn fails. When the error carries a
// Retry-After duration, the retry waits at least that long. Compose with
// whichever Provider backs a turn:
//
//	chatLLM = sqlbot.WithRetry(anthropic.New(apiKey, model, baseURL, nil))
//	chatLLM = sqlbot.WithRetry(openaicompat.NewProvider(apiKey, model, baseURL))
func WithRetry(p Provider, opts ...RetryOption) Provider {
	r := &retryProvider{inner: p, baseDelay: defaultOutageBaseDelay}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name delegates to the inner provider.
func (r *retryProvider) Name() string { return r.inner.Name() }

// Chat implements Provider with retry.
func (r *retryProvider) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	return retryCall(ctx, outageMaxAttempts, r.baseDelay, r.inner.Name(), func() (ChatResponse, error) {
		return r.inner.Chat(ctx, req)
	})
}

// ChatWithTools implements Provider with retry.
func (r *retryProvider) ChatWithTools(ctx context.Context, req ChatRequest, tools []ToolDefinition) (ChatResponse, error) {
	return retryCall(ctx, outageMaxAttempts, r.baseDelay, r.inner.Name(), func() (ChatResponse, error) {
		return r.inner.ChatWithTools(ctx, req, tools)
	})
}

// isTransient reports whether err is a retryable HTTP error (429 or 503).
func isTransient(err error) bool {
	var e *ErrHTTP
	return errors.As(err, &e) && (e.Status == 429 || e.Status == 503)
}

// statusOf extracts the HTTP status code from an ErrHTTP, or 0.
func statusOf(err error) int {
	var e *ErrHTTP
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// retryAfterOf extracts the Retry-After duration from an ErrHTTP, or 0.
func retryAfterOf(err error) time.Duration {
	var e *ErrHTTP
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

// retryDelay computes the delay before retry attempt i, using exponential
// backoff as a floor and the server's Retry-After value (if present) as a
// minimum. The effective delay is max(backoff, retryAfter).
func retryDelay(base time.Duration, i int, err error) time.Duration {
	backoff := retryBackoff(base, i)
	if ra := retryAfterOf(err); ra > backoff {
		return ra
	}
	return backoff
}

// retryCall calls fn up to maxAttempts times, sleeping between transient failures.
func retryCall[T any](ctx context.Context, maxAttempts int, base time.Duration, name string, fn func() (T, error)) (T, error) {
	var zero T
	var last error
	for i := 0; i < maxAttempts; i++ {
		result, err := fn()
		if err == nil || !isTransient(err) {
			return result, err
		}
		last = err
		if i < maxAttempts-1 {
			slog.Warn("provider transient error, retrying", "provider", name, "status", statusOf(err), "attempt", i+1, "max_attempts", maxAttempts)
			delay := retryDelay(base, i, err)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return zero, last
}

// retryBackoff returns the delay for retry i (0-indexed).
// Exponential: base * 2^i, plus up to 50% random jitter.
func retryBackoff(base time.Duration, i int) time.Duration {
	exp := base * (1 << i)
	jitter := time.Duration(rand.Int63n(int64(exp)/2 + 1))
	return exp + jitter
}

// compile-time check
var _ Provider = (*retryProvider)(nil)

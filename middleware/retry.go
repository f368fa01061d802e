package middleware

import (
	"context"
	"time"

	"github.com/agentkit/hookflow/hooks"
)

// ErrorHandling retries a failing hook invocation up to RetryCount times
// with linear delay (attempt * Delay); on exhaustion it calls Fallback (if
// set) or returns FallbackResult.
type ErrorHandling struct {
	RetryCount     int
	Delay          time.Duration
	Fallback       func(ctx context.Context, h hooks.Hook, hctx *hooks.Context, lastErr error) (hooks.Result, error)
	FallbackResult hooks.Result

	// Sleep is overridable for tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

func NewErrorHandling(retryCount int, delay time.Duration) *ErrorHandling {
	return &ErrorHandling{RetryCount: retryCount, Delay: delay, Sleep: time.Sleep}
}

func failed(r hooks.Result, err error) bool {
	return err != nil || (r.ErrorInfo != nil && !r.ErrorInfo.Recoverable)
}

func (m *ErrorHandling) Process(ctx context.Context, h hooks.Hook, hctx *hooks.Context, next Next) (hooks.Result, error) {
	sleep := m.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastResult hooks.Result
	var lastErr error

	attempts := m.RetryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		lastResult, lastErr = next(ctx, hctx)
		if !failed(lastResult, lastErr) {
			return lastResult, lastErr
		}
		if attempt < attempts-1 && m.Delay > 0 {
			sleep(m.Delay * time.Duration(attempt+1))
		}
	}

	if m.Fallback != nil {
		return m.Fallback(ctx, h, hctx, lastErr)
	}
	if m.FallbackResult.ErrorInfo != nil || m.FallbackResult.ContinueProcessing {
		return m.FallbackResult, nil
	}
	return lastResult, lastErr
}

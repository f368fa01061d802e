package workflow

import (
	"context"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// BackoffKind selects a RetryPolicy's delay formula.
type BackoffKind string

const (
	BackoffFixed       BackoffKind = "fixed"
	BackoffLinear      BackoffKind = "linear"
	BackoffExponential BackoffKind = "exponential"
	BackoffFibonacci   BackoffKind = "fibonacci"
)

// RetryPolicy computes per-attempt delays per §4.13 and drives the actual
// retry loop through cenkalti/backoff/v5's Retry orchestration (attempt
// counting, context cancellation, max-tries cutoff). The delay formulas
// themselves are hand-computed: backoff/v5 ships no linear or fibonacci
// curve, and its own jitter model does not match the spec's ±10% uniform
// jitter, so only the retry driver is delegated to the library while
// DelayFor supplies it a custom BackOff.
type RetryPolicy struct {
	MaxAttempts    int
	InitialDelayMs int64
	MaxDelayMs     int64
	Backoff        BackoffKind
	Jitter         bool
	RetriableTypes map[string]bool
}

func NewRetryPolicy(maxAttempts int, initialDelayMs, maxDelayMs int64, kind BackoffKind) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:    maxAttempts,
		InitialDelayMs: initialDelayMs,
		MaxDelayMs:     maxDelayMs,
		Backoff:        kind,
	}
}

// DelayFor computes the delay before attempt `retry` (0-based retry
// count, i.e. the delay before the 2nd attempt is DelayFor(0)).
func (p *RetryPolicy) DelayFor(retry int) time.Duration {
	var ms float64
	switch p.Backoff {
	case BackoffFixed:
		ms = float64(p.InitialDelayMs)
	case BackoffLinear:
		ms = float64(p.InitialDelayMs) * float64(retry+1)
	case BackoffExponential:
		ms = float64(p.InitialDelayMs) * pow2(retry)
	case BackoffFibonacci:
		ms = float64(p.fibonacciDelay(retry))
	default:
		ms = float64(p.InitialDelayMs)
	}

	if p.MaxDelayMs > 0 && ms > float64(p.MaxDelayMs) {
		ms = float64(p.MaxDelayMs)
	}
	if p.Jitter {
		spread := ms * 0.10
		ms += (rand.Float64()*2 - 1) * spread
		if ms < 0 {
			ms = 0
		}
	}
	return time.Duration(ms) * time.Millisecond
}

func pow2(n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= 2
	}
	return out
}

func (p *RetryPolicy) fibonacciDelay(retry int) int64 {
	a, b := p.InitialDelayMs, p.InitialDelayMs
	if retry == 0 {
		return a
	}
	for i := 1; i < retry; i++ {
		a, b = b, a+b
	}
	return b
}

// IsRetriable reports whether errType is in the configured retriable set;
// an empty set means all error types are retriable.
func (p *RetryPolicy) IsRetriable(errType string) bool {
	if len(p.RetriableTypes) == 0 {
		return true
	}
	return p.RetriableTypes[errType]
}

// policyBackOff adapts RetryPolicy.DelayFor into backoff/v5's BackOff
// interface so backoff.Retry can drive the attempt loop.
type policyBackOff struct {
	policy *RetryPolicy
	n      int
}

func (b *policyBackOff) NextBackOff() time.Duration {
	d := b.policy.DelayFor(b.n)
	b.n++
	return d
}

func (b *policyBackOff) Reset() {
	b.n = 0
}

// RunWithRetry executes fn up to MaxAttempts times via backoff.Retry,
// sleeping DelayFor between attempts, returning the first success or the
// last error.
func (p *RetryPolicy) RunWithRetry(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	},
		backoff.WithBackOff(&policyBackOff{policy: p}),
		backoff.WithMaxTries(uint(attempts)),
	)
	return err
}

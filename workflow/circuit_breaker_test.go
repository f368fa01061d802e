package workflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/workflow"
)

// Scenario 8 / P6: failure_threshold=3, success_threshold=2, timeout=100ms.
func TestCircuitBreaker_Scenario8(t *testing.T) {
	cb := workflow.NewCircuitBreaker(3, 2, 100, 1)

	cb.RecordFailure()
	cb.RecordFailure()
	require.Equal(t, workflow.BreakerClosed, cb.State())
	cb.RecordFailure()
	require.Equal(t, workflow.BreakerOpen, cb.State())
	require.False(t, cb.AllowRequest())

	time.Sleep(150 * time.Millisecond)
	require.True(t, cb.AllowRequest())
	require.Equal(t, workflow.BreakerHalfOpen, cb.State())

	cb.RecordSuccess()
	require.Equal(t, workflow.BreakerHalfOpen, cb.State())
	cb.RecordSuccess()
	require.Equal(t, workflow.BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := workflow.NewCircuitBreaker(1, 2, 10, 1)
	cb.RecordFailure()
	require.Equal(t, workflow.BreakerOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	require.True(t, cb.AllowRequest())
	require.Equal(t, workflow.BreakerHalfOpen, cb.State())

	cb.RecordFailure()
	require.Equal(t, workflow.BreakerOpen, cb.State())
}

func TestCircuitBreaker_HalfOpenConcurrencyCap(t *testing.T) {
	cb := workflow.NewCircuitBreaker(1, 1, 10, 1)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	require.True(t, cb.AllowRequest())
	require.False(t, cb.AllowRequest())
}

func TestRetryPolicy_DelayFormulas(t *testing.T) {
	fixed := workflow.NewRetryPolicy(3, 100, 0, workflow.BackoffFixed)
	require.Equal(t, 100*time.Millisecond, fixed.DelayFor(0))
	require.Equal(t, 100*time.Millisecond, fixed.DelayFor(2))

	linear := workflow.NewRetryPolicy(3, 100, 0, workflow.BackoffLinear)
	require.Equal(t, 100*time.Millisecond, linear.DelayFor(0))
	require.Equal(t, 300*time.Millisecond, linear.DelayFor(2))

	exp := workflow.NewRetryPolicy(3, 100, 0, workflow.BackoffExponential)
	require.Equal(t, 100*time.Millisecond, exp.DelayFor(0))
	require.Equal(t, 400*time.Millisecond, exp.DelayFor(2))

	fib := workflow.NewRetryPolicy(5, 10, 0, workflow.BackoffFibonacci)
	require.Equal(t, 10*time.Millisecond, fib.DelayFor(0))
	require.Equal(t, 10*time.Millisecond, fib.DelayFor(1))
	require.Equal(t, 20*time.Millisecond, fib.DelayFor(2))
	require.Equal(t, 30*time.Millisecond, fib.DelayFor(3))
}

func TestRetryPolicy_MaxDelayCap(t *testing.T) {
	p := workflow.NewRetryPolicy(10, 100, 250, workflow.BackoffExponential)
	require.LessOrEqual(t, p.DelayFor(5), 250*time.Millisecond)
}

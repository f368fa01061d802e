package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/workflow"
)

func TestRetryPolicy_DelayCurves(t *testing.T) {
	tests := []struct {
		kind  workflow.BackoffKind
		want  []time.Duration
	}{
		{workflow.BackoffFixed, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 100 * time.Millisecond}},
		{workflow.BackoffLinear, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}},
		{workflow.BackoffExponential, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}},
		{workflow.BackoffFibonacci, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			p := workflow.NewRetryPolicy(5, 100, 0, tt.kind)
			for retry, want := range tt.want {
				require.Equal(t, want, p.DelayFor(retry))
			}
		})
	}
}

func TestRetryPolicy_MaxDelayCaps(t *testing.T) {
	p := workflow.NewRetryPolicy(10, 100, 250, workflow.BackoffExponential)
	require.Equal(t, 250*time.Millisecond, p.DelayFor(5))
}

func TestRetryPolicy_JitterStaysWithinSpread(t *testing.T) {
	p := workflow.NewRetryPolicy(3, 100, 0, workflow.BackoffFixed)
	p.Jitter = true
	for i := 0; i < 50; i++ {
		d := p.DelayFor(0)
		require.GreaterOrEqual(t, d, 90*time.Millisecond)
		require.LessOrEqual(t, d, 110*time.Millisecond)
	}
}

func TestRetryPolicy_RunWithRetryStopsAtMaxAttempts(t *testing.T) {
	p := workflow.NewRetryPolicy(3, 1, 0, workflow.BackoffFixed)
	attempts := 0
	err := p.RunWithRetry(context.Background(), func() error {
		attempts++
		return errors.New("always fails")
	})
	require.Error(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryPolicy_RetriableTypes(t *testing.T) {
	p := workflow.NewRetryPolicy(3, 1, 0, workflow.BackoffFixed)
	require.True(t, p.IsRetriable("anything"))

	p.RetriableTypes = map[string]bool{"TimeoutExceeded": true}
	require.True(t, p.IsRetriable("TimeoutExceeded"))
	require.False(t, p.IsRetriable("ValidationError"))
}

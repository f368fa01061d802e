package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/workflow"
)

// Scenario 6: three delay steps (10, 15, 5ms) with max_concurrency=3
// finish well under their serial sum.
func TestParallelExecutor_Scenario6_Speedup(t *testing.T) {
	seq := workflow.NewSequentialExecutor(nil)
	par := workflow.NewParallelExecutor(seq)
	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)

	step := workflow.StepDefinition{
		ID:             "par1",
		MaxConcurrency: 3,
		WaitForAll:     true,
		Steps: []workflow.StepDefinition{
			{ID: "a", Kind: workflow.StepDelay, DurationMs: 10},
			{ID: "b", Kind: workflow.StepDelay, DurationMs: 15},
			{ID: "c", Kind: workflow.StepDelay, DurationMs: 5},
		},
	}

	res, err := par.Execute(step, ectx)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 3, res.CompletedSteps)
	require.Less(t, res.ExecutionTimeMs, int64(25))
}

func TestParallelExecutor_FailFastStopsEarly(t *testing.T) {
	seq := workflow.NewSequentialExecutor(nil)
	par := workflow.NewParallelExecutor(seq)
	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)

	step := workflow.StepDefinition{
		ID:         "par2",
		FailFast:   true,
		WaitForAll: true,
		Steps: []workflow.StepDefinition{
			{ID: "bad", Kind: "unknown_kind"},
			{ID: "slow", Kind: workflow.StepDelay, DurationMs: 50},
		},
	}

	res, err := par.Execute(step, ectx)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "bad", res.FailedStep)
}

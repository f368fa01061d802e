package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/workflow"
)

func TestDAG_ValidateRejectsCycle(t *testing.T) {
	dag := workflow.BuildDAG([]workflow.StepDefinition{
		{ID: "a", DependsOn: []string{"c"}},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"b"}},
	})
	require.Error(t, dag.Validate())
}

func TestDAG_ValidateRejectsUnknownDependency(t *testing.T) {
	dag := workflow.BuildDAG([]workflow.StepDefinition{
		{ID: "a", DependsOn: []string{"ghost"}},
	})
	require.Error(t, dag.Validate())
}

func TestDAG_ExecutionLevels(t *testing.T) {
	dag := workflow.BuildDAG([]workflow.StepDefinition{
		{ID: "fetch"},
		{ID: "parse", DependsOn: []string{"fetch"}},
		{ID: "enrich", DependsOn: []string{"fetch"}},
		{ID: "store", DependsOn: []string{"parse", "enrich"}},
	})
	require.NoError(t, dag.Validate())

	levels := dag.ExecutionLevels()
	require.Len(t, levels, 3)
	require.Equal(t, []string{"fetch"}, levels[0])
	require.ElementsMatch(t, []string{"parse", "enrich"}, levels[1])
	require.Equal(t, []string{"store"}, levels[2])
}

func TestDAG_TopologicalOrderRespectsDependencies(t *testing.T) {
	dag := workflow.BuildDAG([]workflow.StepDefinition{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"b"}},
	})
	require.Equal(t, []string{"a", "b", "c"}, dag.TopologicalOrder())
}

func TestDAG_FailureSkipsDependents(t *testing.T) {
	dag := workflow.BuildDAG([]workflow.StepDefinition{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"b"}},
	})
	dag.MarkStatus("a", workflow.NodeFailed)

	st, ok := dag.Status("b")
	require.True(t, ok)
	require.Equal(t, workflow.NodeSkipped, st)
	st, _ = dag.Status("c")
	require.Equal(t, workflow.NodeSkipped, st)
}

func TestParallelExecutor_DependencyOrdering(t *testing.T) {
	seq := workflow.NewSequentialExecutor(nil)
	par := workflow.NewParallelExecutor(seq)
	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)

	step := workflow.StepDefinition{
		ID:         "p",
		Kind:       workflow.StepParallel,
		WaitForAll: true,
		Steps: []workflow.StepDefinition{
			{ID: "first", Kind: workflow.StepDelay, DurationMs: 5},
			{ID: "second", Kind: workflow.StepDelay, DurationMs: 1, DependsOn: []string{"first"}},
		},
	}

	res, err := par.Execute(step, ectx)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 2, res.CompletedSteps)
	// Two levels run back to back, so the run takes at least both delays.
	require.GreaterOrEqual(t, res.ExecutionTimeMs, int64(6))
}

func TestParallelExecutor_DependencyFailureSkipsDependents(t *testing.T) {
	seq := workflow.NewSequentialExecutor(nil)
	par := workflow.NewParallelExecutor(seq)
	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)

	step := workflow.StepDefinition{
		ID:         "p",
		Kind:       workflow.StepParallel,
		WaitForAll: true,
		Steps: []workflow.StepDefinition{
			{ID: "bad", Kind: "unknown_kind"},
			{ID: "dependent", Kind: workflow.StepDelay, DurationMs: 1, DependsOn: []string{"bad"}},
		},
	}

	res, err := par.Execute(step, ectx)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "bad", res.FailedStep)
	_, ran := res.StepResults["dependent"]
	require.False(t, ran)
}

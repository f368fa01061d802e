package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/workflow"
)

// Scenario 7: foreach over 3 items, one 1ms delay body.
func TestLoopExecutor_Scenario7_Foreach(t *testing.T) {
	seq := workflow.NewSequentialExecutor(nil)
	loop := workflow.NewLoopExecutor(seq)
	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)
	ectx.SetVariable("items", []interface{}{"a", "b", "c"})

	step := workflow.StepDefinition{
		ID:       "loop1",
		LoopKind: workflow.LoopForeach,
		Body: []workflow.StepDefinition{
			{ID: "body1", Kind: workflow.StepDelay, DurationMs: 1},
		},
	}

	out, err := loop.Execute(step, ectx)
	require.NoError(t, err)
	require.Equal(t, 3, out.IterationsCompleted)
	require.Equal(t, workflow.BreakCompletedNaturally, out.BreakReason)
}

func TestLoopExecutor_WhileMaxIterations(t *testing.T) {
	seq := workflow.NewSequentialExecutor(nil)
	loop := workflow.NewLoopExecutor(seq)
	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)

	step := workflow.StepDefinition{
		ID:            "loop2",
		LoopKind:      workflow.LoopWhile,
		Condition:     "variables.always == true",
		MaxIterations: 3,
		Body: []workflow.StepDefinition{
			{ID: "body1", Kind: workflow.StepDelay, DurationMs: 1},
		},
	}
	ectx.SetVariable("always", true)

	out, err := loop.Execute(step, ectx)
	require.NoError(t, err)
	require.Equal(t, 3, out.IterationsCompleted)
	require.Equal(t, workflow.BreakMaxIterations, out.BreakReason)
}

func TestLoopExecutor_ForeachRequiresArray(t *testing.T) {
	seq := workflow.NewSequentialExecutor(nil)
	loop := workflow.NewLoopExecutor(seq)
	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)

	step := workflow.StepDefinition{ID: "loop3", LoopKind: workflow.LoopForeach}
	_, err := loop.Execute(step, ectx)
	require.Error(t, err)
}

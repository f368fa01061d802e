package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/workflow"
)

func TestWorkflowErrorHandler_RetriesThenSucceeds(t *testing.T) {
	h := workflow.NewWorkflowErrorHandler(nil)
	h.Retry = workflow.NewRetryPolicy(3, 1, 0, workflow.BackoffFixed)

	attempts := 0
	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)
	_, err := h.HandleStepError(context.Background(), workflow.StepDefinition{ID: "s1"}, ectx, errors.New("boom"), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("still failing")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestWorkflowErrorHandler_FallbackDefaultValue(t *testing.T) {
	h := workflow.NewWorkflowErrorHandler(nil)
	h.Retry = workflow.NewRetryPolicy(1, 1, 0, workflow.BackoffFixed)
	h.Fallback = &workflow.FallbackHandler{Strategy: workflow.FallbackDefaultValue, DefaultValue: "fallback"}

	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)
	result, err := h.HandleStepError(context.Background(), workflow.StepDefinition{ID: "s1"}, ectx, errors.New("boom"), func() error {
		return errors.New("always fails")
	})
	require.NoError(t, err)
	require.Equal(t, "fallback", result)
}

func TestWorkflowErrorHandler_CircuitBreakerOpenDenies(t *testing.T) {
	h := workflow.NewWorkflowErrorHandler(nil)
	h.Breaker = workflow.NewCircuitBreaker(1, 1, 10000, 1)
	h.Breaker.RecordFailure()
	require.Equal(t, workflow.BreakerOpen, h.Breaker.State())

	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)
	_, err := h.HandleStepError(context.Background(), workflow.StepDefinition{ID: "s1"}, ectx, errors.New("boom"), func() error {
		return nil
	})
	require.Error(t, err)
}

func TestCompensator_RunsInDescendingOrder(t *testing.T) {
	var order []int

	comp := workflow.NewCompensator(nil, workflow.NewExecutionContext("wf1", "inst1", nil))
	comp.Register(workflow.CompensationAction{StepID: "s1", Order: 1, Custom: func() error { order = append(order, 1); return nil }})
	comp.Register(workflow.CompensationAction{StepID: "s2", Order: 3, Custom: func() error { order = append(order, 3); return nil }})
	comp.Register(workflow.CompensationAction{StepID: "s3", Order: 2, Custom: func() error { order = append(order, 2); return nil }})

	require.NoError(t, comp.CompensateUpTo("s3"))
	require.Equal(t, []int{3, 2, 1}, order)
}

package workflow

import (
	"fmt"
	"sync"
)

// ExecutionState is a workflow instance's coarse lifecycle stage.
type ExecutionState string

const (
	StateReady     ExecutionState = "ready"
	StateRunning   ExecutionState = "running"
	StatePaused    ExecutionState = "paused"
	StateCompleted ExecutionState = "completed"
	StateFailed    ExecutionState = "failed"
	StateCancelled ExecutionState = "cancelled"
)

// validTransitions is the allow-list table ExecutionContext.SetState checks
// against, the same shape as an explicit ValidateTransition-over-
// GetValidTransitions state machine: no executor sets state by direct
// field assignment.
var validTransitions = map[ExecutionState][]ExecutionState{
	StateReady:     {StateRunning, StateCancelled},
	StateRunning:   {StatePaused, StateCompleted, StateFailed, StateCancelled},
	StatePaused:    {StateRunning, StateCancelled},
	StateCompleted: {},
	StateFailed:    {},
	StateCancelled: {},
}

// GetValidTransitions reports the states reachable from from in one step.
func GetValidTransitions(from ExecutionState) []ExecutionState {
	return validTransitions[from]
}

// ValidateTransition reports whether to is a legal next state from from.
func ValidateTransition(from, to ExecutionState) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ExecutionContext is the live, mutable state threaded through a
// workflow's executors: current state, variables, accumulated step
// results, and an optional current-step marker.
type ExecutionContext struct {
	mu sync.RWMutex

	WorkflowID  string
	InstanceID  string
	State       ExecutionState
	CurrentStep string
	Variables   map[string]interface{}
	StepResults map[string]interface{}
}

// NewExecutionContext seeds variables["input"] = input and starts in the
// ready state, per §4.10.
func NewExecutionContext(workflowID, instanceID string, input interface{}) *ExecutionContext {
	return &ExecutionContext{
		WorkflowID:  workflowID,
		InstanceID:  instanceID,
		State:       StateReady,
		Variables:   map[string]interface{}{"input": input},
		StepResults: map[string]interface{}{},
	}
}

// SetState validates the requested transition before applying it.
func (c *ExecutionContext) SetState(to ExecutionState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !ValidateTransition(c.State, to) {
		return fmt.Errorf("workflow: invalid state transition %s -> %s", c.State, to)
	}
	c.State = to
	return nil
}

func (c *ExecutionContext) GetState() ExecutionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.State
}

func (c *ExecutionContext) SetCurrentStep(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentStep = id
}

func (c *ExecutionContext) SetVariable(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Variables[key] = value
}

func (c *ExecutionContext) GetVariable(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.Variables[key]
	return v, ok
}

func (c *ExecutionContext) SetStepResult(stepID string, result interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StepResults[stepID] = result
}

// Snapshot returns a projection suitable for expression evaluation and
// checkpointing: {variables, step_results, execution_state, current_step}.
func (c *ExecutionContext) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vars := make(map[string]interface{}, len(c.Variables))
	for k, v := range c.Variables {
		vars[k] = v
	}
	results := make(map[string]interface{}, len(c.StepResults))
	for k, v := range c.StepResults {
		results[k] = v
	}
	return map[string]interface{}{
		"variables":       vars,
		"step_results":    results,
		"execution_state": string(c.State),
		"current_step":    c.CurrentStep,
	}
}

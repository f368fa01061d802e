package workflow

import "fmt"

// dispatchTransform applies a named transform to the current variables
// snapshot. Only a small built-in set is recognized; anything else is
// rejected rather than silently passed through.
func dispatchTransform(step StepDefinition, ectx *ExecutionContext) (interface{}, error) {
	snap := ectx.Snapshot()
	switch step.Transform {
	case "identity", "":
		return snap["variables"], nil
	case "step_results":
		return snap["step_results"], nil
	default:
		return nil, fmt.Errorf("workflow: unknown transform %q in step %s", step.Transform, step.ID)
	}
}

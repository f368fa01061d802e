package workflow

import "fmt"

// ConditionalExecutor evaluates a ConditionExpression and runs true_steps
// or false_steps via a SequentialExecutor.
type ConditionalExecutor struct {
	Seq *SequentialExecutor
}

func NewConditionalExecutor(seq *SequentialExecutor) *ConditionalExecutor {
	return &ConditionalExecutor{Seq: seq}
}

// Execute evaluates step.Condition and dispatches to the matching branch,
// recording which branch ran into ectx's variables under
// "<step.ID>.branch_taken".
func (e *ConditionalExecutor) Execute(step StepDefinition, ectx *ExecutionContext) (interface{}, error) {
	expr, err := ParseExpression(step.Condition)
	if err != nil {
		return nil, err
	}
	ok, err := expr.Evaluate(ectx.Snapshot())
	if err != nil {
		return nil, err
	}

	branch := step.FalseSteps
	branchName := "false"
	if ok {
		branch, branchName = step.TrueSteps, "true"
	}
	ectx.SetVariable(step.ID+".branch_taken", branchName)

	res := e.Seq.Execute(branch, ectx, step.TimeoutMs)
	if !res.Success {
		return nil, fmt.Errorf("workflow: conditional step %s branch %s failed at %s: %s", step.ID, branchName, res.FailedStep, res.ErrorMessage)
	}
	return res.StepResults, nil
}

func dispatchCondition(e *SequentialExecutor, step StepDefinition, ectx *ExecutionContext) (interface{}, error) {
	cond := NewConditionalExecutor(e.child())
	return cond.Execute(step, ectx)
}

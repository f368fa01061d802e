package workflow

import (
	"fmt"
	"time"

	"github.com/agentkit/hookflow/corerr"
)

// BreakReason records why a LoopExecutor stopped iterating.
type BreakReason string

const (
	BreakConditionFalse     BreakReason = "condition_false"
	BreakMaxIterations      BreakReason = "max_iterations_reached"
	BreakIterationError     BreakReason = "iteration_error"
	BreakTimeout            BreakReason = "timeout"
	BreakExplicit           BreakReason = "explicit_break"
	BreakCompletedNaturally BreakReason = "completed_naturally"
)

// LoopOutcome is a loop step's result.
type LoopOutcome struct {
	IterationsCompleted int                    `json:"iterations_completed"`
	BreakReason         BreakReason            `json:"break_reason"`
	Results             map[string]interface{} `json:"results"`
}

const defaultForIterations = 100

// LoopExecutor runs a step body repeatedly per step.LoopKind, enforcing
// max_iterations and per-iteration timeout, recording per-iteration
// results under "iter_<i>_<step_id>".
type LoopExecutor struct {
	Seq *SequentialExecutor
}

func NewLoopExecutor(seq *SequentialExecutor) *LoopExecutor {
	return &LoopExecutor{Seq: seq}
}

func (e *LoopExecutor) Execute(step StepDefinition, ectx *ExecutionContext) (LoopOutcome, error) {
	maxIter := step.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultForIterations
	}

	var cond *ConditionExpression
	if step.LoopKind == LoopWhile {
		parsed, err := ParseExpression(step.Condition)
		if err != nil {
			return LoopOutcome{}, err
		}
		cond = parsed
	}

	// naturalCount is how many iterations this loop variant would run if
	// it were never cut short by max_iterations: the foreach item count,
	// or unbounded (for/while run until max_iterations/condition).
	naturalCount := -1
	var items []interface{}
	if step.LoopKind == LoopForeach {
		raw, ok := ectx.GetVariable("items")
		if !ok {
			return LoopOutcome{}, corerr.New("LoopExecutor.Execute", corerr.ErrPathNotFound, step.ID, "variables.items is required for a foreach loop")
		}
		arr, ok := raw.([]interface{})
		if !ok {
			return LoopOutcome{}, corerr.New("LoopExecutor.Execute", corerr.ErrInvalidExpression, step.ID, "variables.items must be an array")
		}
		items = arr
		naturalCount = len(items)
	}
	runBudget := maxIter
	if naturalCount >= 0 && naturalCount < runBudget {
		runBudget = naturalCount
	}

	start := time.Now()
	results := map[string]interface{}{}
	completed := 0
	reason := BreakCompletedNaturally

	for i := 0; i < runBudget; i++ {
		if step.TimeoutMs > 0 && time.Since(start).Milliseconds() > step.TimeoutMs {
			reason = BreakTimeout
			break
		}

		ectx.SetVariable("loop_index", i)
		if step.LoopKind == LoopForeach {
			ectx.SetVariable("loop_item", items[i])
		}

		if step.LoopKind == LoopWhile {
			ok, err := cond.Evaluate(ectx.Snapshot())
			if err != nil {
				return LoopOutcome{IterationsCompleted: completed, BreakReason: BreakIterationError, Results: results}, err
			}
			if !ok {
				reason = BreakConditionFalse
				break
			}
		}

		res := e.Seq.Execute(step.Body, ectx, 0)
		for id, r := range res.StepResults {
			results[fmt.Sprintf("iter_%d_%s", i, id)] = r
		}
		completed++

		if !res.Success && step.BreakOnError {
			reason = BreakIterationError
			break
		}

		if i == runBudget-1 {
			if naturalCount >= 0 {
				reason = BreakCompletedNaturally
			} else {
				reason = BreakMaxIterations
			}
		}
	}

	return LoopOutcome{IterationsCompleted: completed, BreakReason: reason, Results: results}, nil
}

func dispatchLoop(e *SequentialExecutor, step StepDefinition, ectx *ExecutionContext) (interface{}, error) {
	loop := NewLoopExecutor(e.child())
	return loop.Execute(step, ectx)
}

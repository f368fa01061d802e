package workflow

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/agentkit/hookflow/corelog"
)

// StepObserver receives per-step lifecycle callbacks during a sequential
// execution. The engine uses it to emit workflow_step_* hook points and
// drive checkpoint strategies without the executor knowing about either.
type StepObserver interface {
	OnStepStart(step StepDefinition, ectx *ExecutionContext)
	OnStepComplete(step StepDefinition, ectx *ExecutionContext, outcome StepOutcome)
	OnStepError(step StepDefinition, ectx *ExecutionContext, err error)
}

// SequentialExecutor runs a step list in order on the calling goroutine,
// per §4.10: per-step retry, continue-on-error, and a fixed inter-step
// delay.
type SequentialExecutor struct {
	Log            corelog.Logger
	MaxStepRetries int
	ContinueOnError bool
	StepDelayMs    int64

	Agents   AgentInvoker
	Tools    ToolInvoker
	Observer StepObserver
}

func NewSequentialExecutor(log corelog.Logger) *SequentialExecutor {
	if log == nil {
		log = corelog.NoOp()
	}
	return &SequentialExecutor{Log: corelog.WithComponent(log, "sequential_executor"), MaxStepRetries: 5}
}

func (e *SequentialExecutor) logger() corelog.Logger {
	if e.Log == nil {
		return corelog.NoOp()
	}
	return e.Log
}

// Execute runs steps against ectx, honoring timeoutMs (0 = no deadline).
// Only the invocation that moves ectx into the running state owns its
// terminal transition; nested sub-executors sharing the same context (a
// sequential step inside a sequential step, a loop body, a conditional
// branch) leave the state to the outermost caller.
func (e *SequentialExecutor) Execute(steps []StepDefinition, ectx *ExecutionContext, timeoutMs int64) Result {
	start := time.Now()
	ownsState := ectx.GetState() != StateRunning
	if ownsState {
		_ = ectx.SetState(StateRunning)
	}

	completed := 0
	for _, step := range steps {
		if timeoutMs > 0 && time.Since(start).Milliseconds() > timeoutMs {
			if ownsState {
				_ = ectx.SetState(StateFailed)
			}
			return Result{
				Success:         false,
				CompletedSteps:  completed,
				FailedStep:      step.ID,
				ErrorMessage:    "workflow timeout exceeded",
				StepResults:     ectx.StepResults,
				ExecutionTimeMs: time.Since(start).Milliseconds(),
			}
		}

		ectx.SetCurrentStep(step.ID)
		if e.Observer != nil {
			e.Observer.OnStepStart(step, ectx)
		}
		output, err := e.runStepWithRetry(step, ectx)

		if err != nil {
			if e.Observer != nil {
				e.Observer.OnStepError(step, ectx, err)
			}
			effectiveContinue := step.ContinueOnError || e.ContinueOnError
			if !effectiveContinue {
				if ownsState {
					_ = ectx.SetState(StateFailed)
				}
				return Result{
					Success:         false,
					CompletedSteps:  completed,
					FailedStep:      step.ID,
					ErrorMessage:    err.Error(),
					StepResults:     ectx.StepResults,
					ExecutionTimeMs: time.Since(start).Milliseconds(),
				}
			}
			outcome := StepOutcome{Success: false, Error: err.Error()}
			ectx.SetStepResult(step.ID, outcome)
			if e.Observer != nil {
				e.Observer.OnStepComplete(step, ectx, outcome)
			}
		} else {
			outcome := StepOutcome{Success: true, Output: output}
			ectx.SetStepResult(step.ID, outcome)
			if e.Observer != nil {
				e.Observer.OnStepComplete(step, ectx, outcome)
			}
		}

		completed++
		if e.StepDelayMs > 0 {
			time.Sleep(time.Duration(e.StepDelayMs) * time.Millisecond)
		}
	}

	if ownsState {
		_ = ectx.SetState(StateCompleted)
	}
	return Result{
		Success:         true,
		CompletedSteps:  completed,
		StepResults:     ectx.StepResults,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}
}

func (e *SequentialExecutor) runStepWithRetry(step StepDefinition, ectx *ExecutionContext) (interface{}, error) {
	attempts := step.RetryCount
	if attempts > e.MaxStepRetries {
		attempts = e.MaxStepRetries
	}

	var lastErr error
	for attempt := 0; attempt <= attempts; attempt++ {
		output, err := e.dispatch(step, ectx)
		if err == nil {
			return output, nil
		}
		lastErr = err
		e.logger().Debug("step attempt failed", "step_id", step.ID, "attempt", attempt, "error", err)
		if attempt < attempts && step.RetryDelayMs > 0 {
			time.Sleep(time.Duration(step.RetryDelayMs) * time.Millisecond)
		}
	}
	return nil, lastErr
}

// dispatch routes a step to its kind-specific handler.
func (e *SequentialExecutor) dispatch(step StepDefinition, ectx *ExecutionContext) (interface{}, error) {
	switch step.Kind {
	case StepDelay:
		return e.runDelay(step)
	case StepAgent:
		if e.Agents == nil {
			return nil, fmt.Errorf("workflow: no agent invoker configured for step %s", step.ID)
		}
		return e.Agents.InvokeAgent(step.TargetName, mapInputs(step, ectx))
	case StepTool:
		if e.Tools == nil {
			return nil, fmt.Errorf("workflow: no tool invoker configured for step %s", step.ID)
		}
		return e.Tools.InvokeTool(step.TargetName, mapInputs(step, ectx))
	case StepSequential:
		sub := e.child()
		res := sub.Execute(step.Steps, ectx, step.TimeoutMs)
		if !res.Success {
			return nil, fmt.Errorf("workflow: nested sequential step %s failed: %s", res.FailedStep, res.ErrorMessage)
		}
		return res.StepResults, nil
	case StepCondition:
		return dispatchCondition(e, step, ectx)
	case StepLoop:
		return dispatchLoop(e, step, ectx)
	case StepParallel:
		return dispatchParallel(e, step, ectx)
	case StepTransform:
		return dispatchTransform(step, ectx)
	case StepScript:
		return dispatchScript(step, ectx)
	default:
		return nil, fmt.Errorf("workflow: unknown step kind %q", step.Kind)
	}
}

// child builds a nested sub-executor inheriting this executor's invokers,
// retry bound, and observer.
func (e *SequentialExecutor) child() *SequentialExecutor {
	sub := NewSequentialExecutor(e.logger())
	sub.Agents, sub.Tools = e.Agents, e.Tools
	sub.MaxStepRetries = e.MaxStepRetries
	sub.Observer = e.Observer
	return sub
}

func (e *SequentialExecutor) runDelay(step StepDefinition) (interface{}, error) {
	d := step.DurationMs
	if step.JitterPct > 0 {
		jitter := float64(d) * (float64(step.JitterPct) / 100.0) * rand.Float64()
		d += int64(jitter)
	}
	time.Sleep(time.Duration(d) * time.Millisecond)
	return nil, nil
}

func mapInputs(step StepDefinition, ectx *ExecutionContext) map[string]interface{} {
	out := map[string]interface{}{}
	if len(step.InputMap) == 0 {
		return out
	}
	snap := ectx.Snapshot()
	for dst, srcPath := range step.InputMap {
		if v, err := resolvePath(snap, srcPath); err == nil {
			out[dst] = v
		}
	}
	return out
}

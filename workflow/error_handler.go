package workflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agentkit/hookflow/corelog"
	"github.com/agentkit/hookflow/corerr"
)

// FallbackStrategy names how WorkflowErrorHandler recovers from a step
// whose retries (if any) are exhausted.
type FallbackStrategy string

const (
	FallbackDefaultValue     FallbackStrategy = "default_value"
	FallbackFallbackStep     FallbackStrategy = "fallback_step"
	FallbackFallbackWorkflow FallbackStrategy = "fallback_workflow"
	FallbackCustomHandler    FallbackStrategy = "custom_handler"
)

// ErrorLogEntry records one step failure seen by a WorkflowErrorHandler.
type ErrorLogEntry struct {
	StepID string
	Err    error
	At     time.Time
}

// FallbackHandler resolves a fallback strategy's recovery value/action.
type FallbackHandler struct {
	Strategy       FallbackStrategy
	DefaultValue   interface{}
	FallbackStep   *StepDefinition
	FallbackWorkflow *Definition
	Custom         func(stepID string, err error) (interface{}, error)
}

// WorkflowErrorHandler coordinates retry policy, an optional circuit
// breaker, fallback resolution, and compensation on step failure, per
// §4.13.
type WorkflowErrorHandler struct {
	Log         corelog.Logger
	Retry       *RetryPolicy
	Breaker     *CircuitBreaker
	Fallback    *FallbackHandler
	Compensator *Compensator

	Seq *SequentialExecutor

	mu       sync.Mutex
	errorLog []ErrorLogEntry
}

func NewWorkflowErrorHandler(log corelog.Logger) *WorkflowErrorHandler {
	if log == nil {
		log = corelog.NoOp()
	}
	return &WorkflowErrorHandler{Log: corelog.WithComponent(log, "workflow_error_handler")}
}

// HandleStepError runs the full recovery pipeline for a step failure:
// circuit-breaker gating, retry, fallback, and — if the fallback itself
// fails — compensation.
func (h *WorkflowErrorHandler) HandleStepError(ctx context.Context, step StepDefinition, ectx *ExecutionContext, stepErr error, retryFn func() error) (interface{}, error) {
	h.appendLog(step.ID, stepErr)

	if h.Breaker != nil && !h.Breaker.AllowRequest() {
		return nil, corerr.New("WorkflowErrorHandler.HandleStepError", corerr.ErrCircuitBreakerOpen, step.ID, "circuit breaker is open")
	}

	if h.Retry != nil {
		retryErr := h.Retry.RunWithRetry(ctx, retryFn)
		if retryErr == nil {
			if h.Breaker != nil {
				h.Breaker.RecordSuccess()
			}
			return nil, nil
		}
		if h.Breaker != nil {
			h.Breaker.RecordFailure()
		}
		stepErr = retryErr
	}

	result, fbErr := h.runFallback(step, ectx, stepErr)
	if fbErr == nil {
		return result, nil
	}

	if h.Compensator != nil {
		if compErr := h.Compensator.CompensateUpTo(step.ID); compErr != nil {
			return nil, corerr.Wrap("WorkflowErrorHandler.HandleStepError", corerr.ErrCompensationFailed, step.ID, compErr)
		}
	}
	return nil, corerr.Wrap("WorkflowErrorHandler.HandleStepError", corerr.ErrRetryLimitExceeded, step.ID, fbErr)
}

func (h *WorkflowErrorHandler) runFallback(step StepDefinition, ectx *ExecutionContext, cause error) (interface{}, error) {
	if h.Fallback == nil {
		return nil, cause
	}
	switch h.Fallback.Strategy {
	case FallbackDefaultValue:
		return h.Fallback.DefaultValue, nil
	case FallbackFallbackStep:
		if h.Fallback.FallbackStep == nil || h.Seq == nil {
			return nil, cause
		}
		out, err := h.Seq.dispatch(*h.Fallback.FallbackStep, ectx)
		if err != nil {
			return nil, err
		}
		return out, nil
	case FallbackFallbackWorkflow:
		if h.Fallback.FallbackWorkflow == nil || h.Seq == nil {
			return nil, cause
		}
		res := h.Seq.Execute(h.Fallback.FallbackWorkflow.Steps, ectx, 0)
		if !res.Success {
			return nil, corerr.New("WorkflowErrorHandler.runFallback", corerr.ErrSubWorkflowFailed, step.ID, res.ErrorMessage)
		}
		return res.StepResults, nil
	case FallbackCustomHandler:
		if h.Fallback.Custom == nil {
			return nil, cause
		}
		return h.Fallback.Custom(step.ID, cause)
	default:
		return nil, cause
	}
}

func (h *WorkflowErrorHandler) appendLog(stepID string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errorLog = append(h.errorLog, ErrorLogEntry{StepID: stepID, Err: err, At: time.Now()})
}

// ErrorLog returns a snapshot of recorded step failures.
func (h *WorkflowErrorHandler) ErrorLog() []ErrorLogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ErrorLogEntry, len(h.errorLog))
	copy(out, h.errorLog)
	return out
}

// CompensationAction is one registered undo action for a step.
type CompensationAction struct {
	StepID    string
	Order     int
	UndoStep  *StepDefinition
	RunWorkflow *Definition
	Custom    func() error
}

// Compensator collects compensation actions as steps succeed and, on a
// later failure, runs the ones registered up to and including the failed
// step, in descending order.
type Compensator struct {
	Seq *SequentialExecutor

	mu      sync.Mutex
	actions []CompensationAction
	ectx    *ExecutionContext
}

func NewCompensator(seq *SequentialExecutor, ectx *ExecutionContext) *Compensator {
	return &Compensator{Seq: seq, ectx: ectx}
}

// Register records a compensation action for stepID.
func (c *Compensator) Register(action CompensationAction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = append(c.actions, action)
}

// CompensateUpTo runs all registered actions for steps up to and
// including failedStepID, in descending Order.
func (c *Compensator) CompensateUpTo(failedStepID string) error {
	c.mu.Lock()
	pending := make([]CompensationAction, 0, len(c.actions))
	for _, a := range c.actions {
		pending = append(pending, a)
		if a.StepID == failedStepID {
			break
		}
	}
	c.mu.Unlock()

	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Order > pending[j].Order })

	for _, a := range pending {
		if err := c.run(a); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compensator) run(a CompensationAction) error {
	switch {
	case a.Custom != nil:
		return a.Custom()
	case a.UndoStep != nil && c.Seq != nil:
		_, err := c.Seq.dispatch(*a.UndoStep, c.ectx)
		return err
	case a.RunWorkflow != nil && c.Seq != nil:
		res := c.Seq.Execute(a.RunWorkflow.Steps, c.ectx, 0)
		if !res.Success {
			return corerr.New("Compensator.run", corerr.ErrCompensationFailed, a.StepID, res.ErrorMessage)
		}
		return nil
	default:
		return nil
	}
}

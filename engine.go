// Package hookflow ties the hook registry and the workflow executors into
// one runnable engine: every workflow run emits lifecycle hook points
// (workflow_start, workflow_step_*, workflow_complete/error) through the
// registry's chains, records execution metrics, and drives checkpoint and
// state persistence over the configured backend.
package hookflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentkit/hookflow/corelog"
	"github.com/agentkit/hookflow/corerr"
	"github.com/agentkit/hookflow/hooks"
	"github.com/agentkit/hookflow/telemetry"
	"github.com/agentkit/hookflow/validation"
	"github.com/agentkit/hookflow/workflow"
)

// Engine is the top-level entry point: it owns the hook registry, the
// telemetry registry, and the persistence wiring, and runs workflow
// definitions through a step observer that bridges executor progress into
// hook-point emissions.
type Engine struct {
	cfg         Config
	log         corelog.Logger
	states      *workflow.StateManager
	checkpoints *workflow.Checkpoint
}

// New assembles an Engine from functional options.
func New(opts ...Option) *Engine {
	cfg := Config{
		Logger:         corelog.NoOp(),
		MaxStepRetries: 5,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Hooks == nil {
		cfg.Hooks = hooks.NewRegistry()
	}
	if cfg.Telemetry == nil {
		cfg.Telemetry = telemetry.NewRegistry()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = workflow.NewMetrics(cfg.Telemetry)
	}

	e := &Engine{cfg: cfg, log: corelog.WithComponent(cfg.Logger, "engine")}
	if cfg.Store != nil {
		e.states = workflow.NewStateManager(cfg.Store)
		e.checkpoints = workflow.NewCheckpoint(cfg.Store)
	}
	return e
}

// Hooks exposes the engine's hook registry for callers registering
// factories and instances.
func (e *Engine) Hooks() *hooks.Registry { return e.cfg.Hooks }

// Telemetry exposes the shared metrics registry.
func (e *Engine) Telemetry() *telemetry.Registry { return e.cfg.Telemetry }

// Metrics exposes the workflow execution metrics tracker.
func (e *Engine) Metrics() *workflow.Metrics { return e.cfg.Metrics }

// Checkpoints exposes the checkpoint manager, or nil when no state store
// was configured.
func (e *Engine) Checkpoints() *workflow.Checkpoint { return e.checkpoints }

// runRef anchors one workflow run as the hooks.RunRef every emitted hook
// context carries.
type runRef struct {
	id string
}

func (r runRef) RunID() string { return r.id }

// Run executes def with the given input. Input is validated against the
// definition's input schema when one is declared; the run then flows
// through the sequential executor with per-step hook emission, and
// terminates with a workflow_complete or workflow_error hook point.
func (e *Engine) Run(ctx context.Context, def *workflow.Definition, input map[string]interface{}) (workflow.Result, error) {
	if input == nil {
		input = map[string]interface{}{}
	}

	if def.InputSchema != nil {
		v := validation.NewSchemaValidator(validation.Schema(def.InputSchema))
		if res := v.Validate(input); !res.Valid {
			err := corerr.New("Engine.Run", corerr.ErrValidation, def.ID,
				fmt.Sprintf("workflow input failed schema validation: %d error(s)", len(res.Errors)))
			return workflow.Result{Success: false, ErrorMessage: err.Error()}, err
		}
	}

	instanceID := workflow.NewInstanceID()
	run := runRef{id: uuid.NewString()}
	ectx := workflow.NewExecutionContext(def.ID, instanceID, input)
	for k, v := range def.VariableDefaults {
		if _, exists := ectx.GetVariable(k); !exists {
			ectx.SetVariable(k, v)
		}
	}

	root := hooks.NewEnhancedContext(hooks.WorkflowStart, run, map[string]interface{}{
		"workflow_id": def.ID,
		"instance_id": instanceID,
		"input":       input,
	})
	e.firePoint(ctx, root, hooks.WorkflowStart, nil)

	seq := workflow.NewSequentialExecutor(e.cfg.Logger)
	seq.Agents, seq.Tools = e.cfg.Agents, e.cfg.Tools
	seq.MaxStepRetries = e.cfg.MaxStepRetries
	seq.ContinueOnError = e.cfg.ContinueOnError
	seq.Observer = &stepBridge{engine: e, ctx: ctx, def: def, root: root, starts: map[string]time.Time{}}

	res := seq.Execute(def.Steps, ectx, e.cfg.WorkflowTimeoutMs)

	if res.Success {
		e.firePoint(ctx, root, hooks.WorkflowComplete, map[string]interface{}{
			"completed_steps":   res.CompletedSteps,
			"execution_time_ms": res.ExecutionTimeMs,
		})
	} else {
		e.firePoint(ctx, root, hooks.WorkflowError, map[string]interface{}{
			"failed_step":   res.FailedStep,
			"error_message": res.ErrorMessage,
		})
	}

	e.cfg.Metrics.RecordExecution(def.ID, res)

	if e.states != nil {
		if err := e.states.Save(ctx, ectx); err != nil {
			e.log.Error(err, "persisting terminal workflow state failed",
				"workflow_id", def.ID, "instance_id", instanceID)
		}
	}
	return res, nil
}

// firePoint runs the global-then-point hook chains for point, using a
// child of root so hooks see the run's shared state store. Hook errors are
// accumulated on the root context and logged, never fatal to the run.
func (e *Engine) firePoint(ctx context.Context, root *hooks.EnhancedContext, point hooks.Point, data map[string]interface{}) hooks.Result {
	var hctx *hooks.EnhancedContext
	if point == root.Point {
		hctx = root
	} else {
		hctx = root.NewChild(point, data)
	}

	exec := e.cfg.Hooks.GetHooksForPoint(point)
	res, err := exec.Execute(ctx, hctx.Context)
	if err != nil {
		root.RecordError(err)
		e.log.Error(err, "hook chain failed", "point", string(point))
		return hooks.DefaultContinue()
	}
	return res
}

// stepBridge is the StepObserver that couples executor progress back into
// the hook system: each step start/completion/error becomes a
// workflow_step_* hook point, per-step metrics are recorded, and the
// on_step_completion checkpoint strategy snapshots the context after every
// finished step.
type stepBridge struct {
	engine *Engine
	ctx    context.Context
	def    *workflow.Definition
	root   *hooks.EnhancedContext

	mu     sync.Mutex
	starts map[string]time.Time
}

func (b *stepBridge) OnStepStart(step workflow.StepDefinition, ectx *workflow.ExecutionContext) {
	b.mu.Lock()
	b.starts[step.ID] = time.Now()
	b.mu.Unlock()

	b.engine.firePoint(b.ctx, b.root, hooks.WorkflowStepStart, map[string]interface{}{
		"step_id":   step.ID,
		"step_kind": string(step.Kind),
	})
}

func (b *stepBridge) OnStepComplete(step workflow.StepDefinition, ectx *workflow.ExecutionContext, outcome workflow.StepOutcome) {
	d := b.sinceStart(step.ID)
	// Failed-but-continuing steps were already counted by OnStepError.
	if outcome.Success {
		b.engine.cfg.Metrics.RecordStep(b.def.ID, step.ID, true, d)
	}

	b.engine.firePoint(b.ctx, b.root, hooks.WorkflowStepComplete, map[string]interface{}{
		"step_id":     step.ID,
		"success":     outcome.Success,
		"duration_ms": d.Milliseconds(),
	})

	if b.engine.checkpoints != nil && b.engine.cfg.CheckpointStrategy == workflow.CheckpointOnStepCompletion {
		if err := b.engine.checkpoints.Create(b.ctx, ectx, step.ID); err != nil {
			b.engine.log.Error(err, "step checkpoint failed", "step_id", step.ID)
		}
	}
}

func (b *stepBridge) OnStepError(step workflow.StepDefinition, ectx *workflow.ExecutionContext, err error) {
	d := b.sinceStart(step.ID)
	b.engine.cfg.Metrics.RecordStep(b.def.ID, step.ID, false, d)

	b.engine.firePoint(b.ctx, b.root, hooks.WorkflowStepError, map[string]interface{}{
		"step_id":     step.ID,
		"error":       err.Error(),
		"duration_ms": d.Milliseconds(),
	})
}

func (b *stepBridge) sinceStart(stepID string) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.starts[stepID]; ok {
		return time.Since(t)
	}
	return 0
}

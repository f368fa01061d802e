package hookflow_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow"
	"github.com/agentkit/hookflow/caching"
	"github.com/agentkit/hookflow/hooks"
	"github.com/agentkit/hookflow/telemetry"
	"github.com/agentkit/hookflow/workflow"
)

type pointRecorder struct {
	mu     sync.Mutex
	points []hooks.Point
}

func (r *pointRecorder) hook(id string) *hooks.FuncHook {
	return &hooks.FuncHook{
		// No declared points: a global hook, invoked at every point.
		BaseHook: hooks.BaseHook{IDValue: id, NameValue: id, EnabledValue: true},
		Fn: func(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
			r.mu.Lock()
			r.points = append(r.points, hctx.Point)
			r.mu.Unlock()
			return hooks.DefaultContinue(), nil
		},
	}
}

func (r *pointRecorder) seen() []hooks.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]hooks.Point, len(r.points))
	copy(out, r.points)
	return out
}

func TestEngine_RunEmitsWorkflowHookPoints(t *testing.T) {
	rec := &pointRecorder{}
	eng := hookflow.New()
	require.NoError(t, eng.Hooks().Register(context.Background(), rec.hook("recorder")))

	def := workflow.NewDefinition("wf1", "test", []workflow.StepDefinition{
		{ID: "d1", Kind: workflow.StepDelay, DurationMs: 1},
	})

	res, err := eng.Run(context.Background(), def, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 1, res.CompletedSteps)

	require.Equal(t, []hooks.Point{
		hooks.WorkflowStart,
		hooks.WorkflowStepStart,
		hooks.WorkflowStepComplete,
		hooks.WorkflowComplete,
	}, rec.seen())
}

func TestEngine_RunEmitsStepErrorAndWorkflowError(t *testing.T) {
	rec := &pointRecorder{}
	eng := hookflow.New()
	require.NoError(t, eng.Hooks().Register(context.Background(), rec.hook("recorder")))

	def := workflow.NewDefinition("wf1", "test", []workflow.StepDefinition{
		{ID: "bad", Kind: "unknown_kind"},
	})

	res, err := eng.Run(context.Background(), def, nil)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "bad", res.FailedStep)

	require.Equal(t, []hooks.Point{
		hooks.WorkflowStart,
		hooks.WorkflowStepStart,
		hooks.WorkflowStepError,
		hooks.WorkflowError,
	}, rec.seen())
}

func TestEngine_InputSchemaValidationRejects(t *testing.T) {
	eng := hookflow.New()
	def := workflow.NewDefinition("wf1", "test", []workflow.StepDefinition{
		{ID: "d1", Kind: workflow.StepDelay, DurationMs: 1},
	})
	def.InputSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"name"},
	}

	_, err := eng.Run(context.Background(), def, map[string]interface{}{})
	require.Error(t, err)
}

func TestEngine_CheckpointOnStepCompletion(t *testing.T) {
	store := workflow.NewMemoryKVStore()
	eng := hookflow.New(
		hookflow.WithStateStore(store),
		hookflow.WithCheckpointStrategy(workflow.CheckpointOnStepCompletion),
	)

	def := workflow.NewDefinition("wf1", "test", []workflow.StepDefinition{
		{ID: "d1", Kind: workflow.StepDelay, DurationMs: 1},
		{ID: "d2", Kind: workflow.StepDelay, DurationMs: 1},
	})

	res, err := eng.Run(context.Background(), def, nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	keys, err := store.ListKeys(context.Background(), "wf1:*")
	require.NoError(t, err)
	// One checkpoint per completed step plus the terminal state record.
	require.Len(t, keys, 3)
}

func TestEngine_VariableDefaultsSeedVariables(t *testing.T) {
	eng := hookflow.New()
	def := workflow.NewDefinition("wf1", "test", []workflow.StepDefinition{
		{ID: "check", Kind: workflow.StepCondition, Condition: "variables.mode == \"fast\"",
			TrueSteps:  []workflow.StepDefinition{{ID: "t", Kind: workflow.StepDelay, DurationMs: 1}},
			FalseSteps: []workflow.StepDefinition{{ID: "f", Kind: "unknown_kind"}}},
	})
	def.VariableDefaults = map[string]interface{}{"mode": "fast"}

	res, err := eng.Run(context.Background(), def, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestEngine_MetricsRecordExecution(t *testing.T) {
	eng := hookflow.New()
	def := workflow.NewDefinition("wf1", "test", []workflow.StepDefinition{
		{ID: "d1", Kind: workflow.StepDelay, DurationMs: 1},
	})

	_, err := eng.Run(context.Background(), def, nil)
	require.NoError(t, err)

	snap := eng.Metrics().Snapshot()
	require.Equal(t, int64(1), snap.TotalExecutions)
	require.Equal(t, int64(1), snap.Successful)
	require.Equal(t, int64(1), snap.StepStats["d1"].Executions)
}

type spanRecorder struct {
	mu      sync.Mutex
	started []*telemetry.Span
	ended   []*telemetry.Span
}

func (p *spanRecorder) OnStart(ctx context.Context, s *telemetry.Span) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, s)
}

func (p *spanRecorder) OnEnd(s *telemetry.Span) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = append(p.ended, s)
}

func (p *spanRecorder) ForceFlush(ctx context.Context) error { return nil }
func (p *spanRecorder) Shutdown(ctx context.Context) error   { return nil }

// A tracing hook on the step points must pair spans innermost-first when
// a sequential step nests children, with the nested span parented under
// the outer step's span.
func TestEngine_TracingHookPairsNestedSteps(t *testing.T) {
	rec := &spanRecorder{}
	th := telemetry.NewTracingHook("step-tracer",
		[]hooks.Point{hooks.WorkflowStepStart},
		[]hooks.Point{hooks.WorkflowStepComplete, hooks.WorkflowStepError},
		rec)

	eng := hookflow.New()
	require.NoError(t, eng.Hooks().Register(context.Background(), th))

	def := workflow.NewDefinition("wf1", "test", []workflow.StepDefinition{
		{ID: "outer", Kind: workflow.StepSequential, Steps: []workflow.StepDefinition{
			{ID: "inner", Kind: workflow.StepDelay, DurationMs: 1},
		}},
	})

	res, err := eng.Run(context.Background(), def, nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	require.Len(t, rec.started, 2)
	require.Len(t, rec.ended, 2)

	outer, inner := rec.started[0], rec.started[1]
	require.Same(t, inner, rec.ended[0])
	require.Same(t, outer, rec.ended[1])
	require.Equal(t, outer.TraceID, inner.TraceID)
	require.Equal(t, outer.SpanID, inner.ParentSpanID)
}

func TestInvokeWithCache_PopulatesOnMissThenHits(t *testing.T) {
	storage := caching.NewMemoryStorage()
	h := caching.NewHook("cache1", []hooks.Point{hooks.AgentBeforeRun}, storage, 60000, 0, caching.PolicyLRU)

	produced := 0
	produce := func() (hooks.Result, error) {
		produced++
		return hooks.Result{ContinueProcessing: false, ModifiedData: map[string]interface{}{"answer": 42}}, nil
	}

	hctx := hooks.NewContext(hooks.AgentBeforeRun, nil, map[string]interface{}{"q": "meaning"})
	r1, err := hookflow.InvokeWithCache(context.Background(), h, hctx, produce)
	require.NoError(t, err)
	require.Equal(t, 1, produced)
	require.Equal(t, 42, r1.ModifiedData["answer"])

	hctx2 := hooks.NewContext(hooks.AgentBeforeRun, nil, map[string]interface{}{"q": "meaning"})
	r2, err := hookflow.InvokeWithCache(context.Background(), h, hctx2, produce)
	require.NoError(t, err)
	require.Equal(t, 1, produced)
	require.False(t, r2.ContinueProcessing)

	metrics := h.GetMetrics()
	require.Equal(t, int64(1), metrics["hits"])
	require.Equal(t, int64(1), metrics["misses"])
}

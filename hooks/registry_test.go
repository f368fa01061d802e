package hooks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/corerr"
	"github.com/agentkit/hookflow/hooks"
)

func TestRegistry_CreateUnknownType(t *testing.T) {
	r := hooks.NewRegistry()
	_, err := r.Create(context.Background(), "nope", "id1", nil)
	require.Error(t, err)
	require.True(t, corerr.IsKind(err, corerr.ErrHookTypeNotFound))
}

func TestRegistry_DuplicateIDReplaces(t *testing.T) {
	r := hooks.NewRegistry()
	h1 := newTestHook("dup", hooks.PriorityNormal, hooks.AgentBeforeRun)
	h2 := newTestHook("dup", hooks.PriorityNormal, hooks.AgentBeforeRun)

	require.NoError(t, r.Register(context.Background(), h1))
	require.NoError(t, r.Register(context.Background(), h2))

	got, ok := r.Get("dup")
	require.True(t, ok)
	require.Same(t, h2, got)

	exec := r.GetHooksForPoint(hooks.AgentBeforeRun)
	hctx := hooks.NewContext(hooks.AgentBeforeRun, runRefStub("run-1"), nil)
	_, err := exec.Execute(context.Background(), hctx)
	require.NoError(t, err)
}

func TestRegistry_GlobalRunsBeforePointSpecific(t *testing.T) {
	r := hooks.NewRegistry()
	var calls []string

	globalHook := newTestHook("global", hooks.PriorityNormal)
	globalHook.Fn = func(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
		calls = append(calls, "global")
		return hooks.DefaultContinue(), nil
	}
	pointHook := newTestHook("point", hooks.PriorityNormal, hooks.AgentBeforeRun)
	pointHook.Fn = func(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
		calls = append(calls, "point")
		return hooks.DefaultContinue(), nil
	}

	require.NoError(t, r.Register(context.Background(), globalHook))
	require.NoError(t, r.Register(context.Background(), pointHook))

	exec := r.GetHooksForPoint(hooks.AgentBeforeRun)
	hctx := hooks.NewContext(hooks.AgentBeforeRun, runRefStub("run-1"), nil)
	_, err := exec.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.Equal(t, []string{"global", "point"}, calls)
}

// A hook declaring the Custom wildcard must fire for every point, not
// only the literal "custom" point: registration routes it into the
// global chain.
func TestRegistry_CustomWildcardRunsForEveryPoint(t *testing.T) {
	r := hooks.NewRegistry()
	var calls []hooks.Point

	wildcard := newTestHook("wildcard", hooks.PriorityNormal, hooks.Custom)
	wildcard.Fn = func(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
		calls = append(calls, hctx.Point)
		return hooks.DefaultContinue(), nil
	}
	require.NoError(t, r.Register(context.Background(), wildcard))

	for _, p := range []hooks.Point{hooks.AgentBeforeRun, hooks.ToolAfterExecute, hooks.WorkflowStepStart} {
		exec := r.GetHooksForPoint(p)
		hctx := hooks.NewContext(p, runRefStub("run-1"), nil)
		_, err := exec.Execute(context.Background(), hctx)
		require.NoError(t, err)
	}
	require.Equal(t, []hooks.Point{hooks.AgentBeforeRun, hooks.ToolAfterExecute, hooks.WorkflowStepStart}, calls)

	// Unregister must find it in the global chain again.
	require.NoError(t, r.Unregister(context.Background(), "wildcard"))
	exec := r.GetHooksForPoint(hooks.AgentBeforeRun)
	hctx := hooks.NewContext(hooks.AgentBeforeRun, runRefStub("run-1"), nil)
	_, err := exec.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.Len(t, calls, 3)
}

func TestRegistry_UnregisterUnknownID(t *testing.T) {
	r := hooks.NewRegistry()
	err := r.Unregister(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, corerr.IsKind(err, corerr.ErrHookNotFound))
}

package filters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/filters"
	"github.com/agentkit/hookflow/hooks"
)

type recordingHook struct {
	hooks.BaseHook
	invoked bool
}

func (h *recordingHook) Execute(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
	h.invoked = true
	return hooks.DefaultContinue(), nil
}

func TestPointFilter(t *testing.T) {
	inner := &recordingHook{BaseHook: hooks.BaseHook{IDValue: "h", EnabledValue: true}}
	wrapped := filters.NewWrap(inner, filters.NewPointFilter(hooks.ToolBeforeExecute))

	hctx := hooks.NewContext(hooks.AgentBeforeRun, nil, nil)
	_, err := wrapped.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.False(t, inner.invoked)

	hctx2 := hooks.NewContext(hooks.ToolBeforeExecute, nil, nil)
	_, err = wrapped.Execute(context.Background(), hctx2)
	require.NoError(t, err)
	require.True(t, inner.invoked)
}

func TestRateLimitFilter(t *testing.T) {
	f := filters.NewRateLimitFilter(50*time.Millisecond, 2)
	hctx := hooks.NewContext(hooks.AgentBeforeRun, nil, nil)

	require.True(t, f.Allow(nil, hctx))
	require.True(t, f.Allow(nil, hctx))
	require.False(t, f.Allow(nil, hctx))

	time.Sleep(60 * time.Millisecond)
	require.True(t, f.Allow(nil, hctx))
}

func TestMetadataFilter(t *testing.T) {
	hctx := hooks.NewContext(hooks.AgentBeforeRun, nil, nil)
	hctx.Metadata["agent_id"] = "abc"

	exists := &filters.MetadataFilter{Key: "agent_id", Type: filters.MatchExists}
	require.True(t, exists.Allow(nil, hctx))

	equals := &filters.MetadataFilter{Key: "agent_id", Type: filters.MatchEquals, Value: "abc"}
	require.True(t, equals.Allow(nil, hctx))

	notEquals := &filters.MetadataFilter{Key: "agent_id", Type: filters.MatchNotEquals, Value: "xyz"}
	require.True(t, notEquals.Allow(nil, hctx))
}

func TestCompositeFilter(t *testing.T) {
	alwaysTrue := filters.Func(func(h hooks.Hook, hctx *hooks.Context) bool { return true })
	alwaysFalse := filters.Func(func(h hooks.Hook, hctx *hooks.Context) bool { return false })

	require.False(t, filters.And(alwaysTrue, alwaysFalse).Allow(nil, nil))
	require.True(t, filters.Or(alwaysTrue, alwaysFalse).Allow(nil, nil))
	require.True(t, filters.Not(alwaysFalse).Allow(nil, nil))
}

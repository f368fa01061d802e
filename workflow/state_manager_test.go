package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/corerr"
	"github.com/agentkit/hookflow/workflow"
)

// Scenario 10 / P8: checkpoint round-trip.
func TestCheckpoint_Scenario10_Restore(t *testing.T) {
	store := workflow.NewMemoryKVStore()
	cp := workflow.NewCheckpoint(store)

	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)
	ectx.SetVariable("step", 1.0)

	require.NoError(t, cp.Create(context.Background(), ectx, "cp1"))

	ectx.SetVariable("step", 2.0)
	v, _ := ectx.GetVariable("step")
	require.Equal(t, 2.0, v)

	require.NoError(t, cp.Restore(context.Background(), ectx, "cp1"))
	v, _ = ectx.GetVariable("step")
	require.Equal(t, 1.0, v)
}

func TestCheckpoint_RestoreDoesNotAliasLiveMaps(t *testing.T) {
	store := workflow.NewMemoryKVStore()
	cp := workflow.NewCheckpoint(store)

	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)
	ectx.SetVariable("step", 1.0)
	require.NoError(t, cp.Create(context.Background(), ectx, "cp1"))
	require.NoError(t, cp.Restore(context.Background(), ectx, "cp1"))

	ectx.SetVariable("step", 99.0)

	// Restoring again from the same checkpoint must yield 1, proving the
	// checkpoint's own copy was never mutated by the first restore.
	require.NoError(t, cp.Restore(context.Background(), ectx, "cp1"))
	v, _ := ectx.GetVariable("step")
	require.Equal(t, 1.0, v)
}

func TestStateManager_SaveLoad(t *testing.T) {
	store := workflow.NewMemoryKVStore()
	mgr := workflow.NewStateManager(store)

	ectx := workflow.NewExecutionContext("wf1", "inst1", nil)
	ectx.SetVariable("x", "y")
	require.NoError(t, ectx.SetState(workflow.StateRunning))

	require.NoError(t, mgr.Save(context.Background(), ectx))

	loaded, err := mgr.Load(context.Background(), "wf1", "inst1")
	require.NoError(t, err)
	require.Equal(t, workflow.StateRunning, loaded.GetState())
	v, ok := loaded.GetVariable("x")
	require.True(t, ok)
	require.Equal(t, "y", v)
}

func TestStateManager_LoadMissingReturnsKeyNotFound(t *testing.T) {
	store := workflow.NewMemoryKVStore()
	mgr := workflow.NewStateManager(store)

	_, err := mgr.Load(context.Background(), "wf1", "nope")
	require.ErrorIs(t, err, corerr.ErrKeyNotFound)
}

func TestFileKVStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := workflow.NewFileKVStore(dir)

	require.NoError(t, store.Save(context.Background(), "wf1:inst1", []byte(`{"x":1}`)))
	data, err := store.Load(context.Background(), "wf1:inst1")
	require.NoError(t, err)
	require.Equal(t, `{"x":1}`, string(data))

	keys, err := store.ListKeys(context.Background(), "wf1:*")
	require.NoError(t, err)
	require.Contains(t, keys, "wf1:inst1")
}

func TestNewInstanceID_Unique(t *testing.T) {
	a := workflow.NewInstanceID()
	b := workflow.NewInstanceID()
	require.NotEqual(t, a, b)
}

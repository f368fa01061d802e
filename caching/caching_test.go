package caching_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentkit/hookflow/caching"
	"github.com/agentkit/hookflow/hooks"
)

// Scenario 2: cache hit short-circuit.
func TestCachingHook_HitShortCircuits(t *testing.T) {
	storage := caching.NewMemoryStorage()
	h := caching.NewHook("cache1", []hooks.Point{hooks.AgentBeforeRun}, storage, 1000, 0, caching.PolicyLRU)

	hctx := hooks.NewContext(hooks.AgentBeforeRun, nil, map[string]interface{}{"x": 1})
	key, err := caching.GenerateKey(string(hooks.AgentBeforeRun), hctx.InputData, hctx.Metadata)
	require.NoError(t, err)

	now := time.Now()
	storage.Put(&caching.Entry{
		Key:          key,
		Value:        hooks.Result{ContinueProcessing: false, ModifiedData: map[string]interface{}{"cached": true}},
		CreatedAt:    now,
		LastAccessed: now,
		TTLMs:        1000,
	})

	r, err := h.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.False(t, r.ContinueProcessing)
	require.Equal(t, true, r.ModifiedData["cached"])

	metrics := h.GetMetrics()
	require.Equal(t, int64(1), metrics["hits"])
	require.Equal(t, int64(0), metrics["misses"])
}

// P3: evict is a no-op when already within target.
func TestMemoryStorage_EvictNoOpWithinTarget(t *testing.T) {
	storage := caching.NewMemoryStorage()
	now := time.Now()
	storage.Put(&caching.Entry{Key: "a", CreatedAt: now, LastAccessed: now, SizeBytes: 10})
	before := storage.TotalBytes()

	storage.Evict(caching.PolicyLRU, 100)
	require.Equal(t, before, storage.TotalBytes())
	require.Equal(t, 1, storage.Size())
}

func TestMemoryStorage_EvictLRU(t *testing.T) {
	storage := caching.NewMemoryStorage()
	now := time.Now()
	storage.Put(&caching.Entry{Key: "old", CreatedAt: now, LastAccessed: now, SizeBytes: 50})
	storage.Put(&caching.Entry{Key: "new", CreatedAt: now.Add(time.Second), LastAccessed: now.Add(time.Second), SizeBytes: 50})

	storage.Evict(caching.PolicyLRU, 50)
	require.Equal(t, 1, storage.Size())
	_, ok := storage.Get("new")
	require.True(t, ok)
}

func TestGenerateKey_Deterministic(t *testing.T) {
	input := map[string]interface{}{"b": 2, "a": 1}
	k1, err := caching.GenerateKey("point", input, nil)
	require.NoError(t, err)
	k2, err := caching.GenerateKey("point", map[string]interface{}{"a": 1, "b": 2}, nil)
	require.NoError(t, err)
	require.Equal(t, k1, k2)
}

func TestEstimateSize(t *testing.T) {
	require.Equal(t, int64(4), caching.EstimateSize(nil))
	require.Equal(t, int64(5), caching.EstimateSize(true))
	require.Equal(t, int64(20), caching.EstimateSize(float64(3)))
	require.Equal(t, int64(7), caching.EstimateSize("hello"))
}

package caching

import (
	"context"
	"sync"
	"time"

	"github.com/agentkit/hookflow/hooks"
)

// Hook intercepts at its configured points: on a cache hit it returns the
// stored Result verbatim (short-circuiting downstream); on a miss it
// records the miss and continues. Per the design notes' "caching
// population" contract, the hook itself never writes on miss — populating
// the cache with a freshly produced result is the outer orchestrator's
// responsibility via Populate.
type Hook struct {
	hooks.BaseHook
	Storage     Storage
	TTLMs       int64
	MaxBytes    int64
	EvictPolicy EvictionPolicy
	CachePoints map[hooks.Point]struct{}

	mu    sync.Mutex
	stats Stats
}

func NewHook(id string, points []hooks.Point, storage Storage, ttlMs, maxBytes int64, policy EvictionPolicy) *Hook {
	cachePoints := make(map[hooks.Point]struct{}, len(points))
	for _, p := range points {
		cachePoints[p] = struct{}{}
	}
	return &Hook{
		BaseHook: hooks.BaseHook{
			IDValue:       id,
			NameValue:     id,
			PriorityValue: hooks.PriorityHigh,
			Points:        points,
			EnabledValue:  true,
		},
		Storage:     storage,
		TTLMs:       ttlMs,
		MaxBytes:    maxBytes,
		EvictPolicy: policy,
		CachePoints: cachePoints,
	}
}

func (h *Hook) Execute(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
	if !h.Enabled() {
		return hooks.DefaultContinue(), nil
	}
	if _, ok := h.CachePoints[hctx.Point]; !ok {
		return hooks.DefaultContinue(), nil
	}

	key, err := GenerateKey(string(hctx.Point), hctx.InputData, hctx.Metadata)
	if err != nil {
		return hooks.DefaultContinue(), nil
	}

	if entry, hit := h.Storage.Get(key); hit {
		h.mu.Lock()
		h.stats.Hits++
		h.mu.Unlock()
		return entry.Value, nil
	}

	h.mu.Lock()
	h.stats.Misses++
	h.mu.Unlock()

	if h.MaxBytes > 0 && h.Storage.TotalBytes() > h.MaxBytes {
		h.Storage.Evict(h.EvictPolicy, int64(float64(h.MaxBytes)*0.9))
	}

	return hooks.DefaultContinue(), nil
}

// Populate writes a freshly produced result into the cache under the key
// the current context would have been looked up with. The outer
// orchestrator calls this after obtaining a real result on a miss.
func (h *Hook) Populate(hctx *hooks.Context, result hooks.Result) error {
	key, err := GenerateKey(string(hctx.Point), hctx.InputData, hctx.Metadata)
	if err != nil {
		return err
	}
	now := time.Now()
	h.Storage.Put(&Entry{
		Key:          key,
		Value:        result,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  0,
		SizeBytes:    EstimateEntrySize(result.ModifiedData),
		TTLMs:        h.TTLMs,
	})
	return nil
}

func (h *Hook) GetMetrics() map[string]interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return map[string]interface{}{
		"hits":   h.stats.Hits,
		"misses": h.stats.Misses,
	}
}

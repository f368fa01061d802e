package filters

import (
	"sync"
	"time"

	"github.com/agentkit/hookflow/hooks"
)

// RateLimitFilter admits a request iff fewer than Limit timestamps remain
// in the trailing Window after purging stale ones, then records now.
// Grounded on the sliding-window idiom shared with package ratelimit, but
// kept independent since a filter has no retry_after/stats surface.
type RateLimitFilter struct {
	Window time.Duration
	Limit  int
	KeyFn  func(h hooks.Hook, hctx *hooks.Context) string

	mu   sync.Mutex
	logs map[string][]time.Time
}

func NewRateLimitFilter(window time.Duration, limit int) *RateLimitFilter {
	return &RateLimitFilter{Window: window, Limit: limit, logs: map[string][]time.Time{}}
}

func (f *RateLimitFilter) Allow(h hooks.Hook, hctx *hooks.Context) bool {
	key := "global"
	if f.KeyFn != nil {
		key = f.KeyFn(h, hctx)
	}

	now := time.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	log := f.logs[key]
	cutoff := now.Add(-f.Window)
	kept := log[:0]
	for _, t := range log {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= f.Limit {
		f.logs[key] = kept
		return false
	}
	kept = append(kept, now)
	f.logs[key] = kept
	return true
}

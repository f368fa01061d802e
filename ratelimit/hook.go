package ratelimit

import (
	"context"
	"strconv"
	"sync"

	"github.com/agentkit/hookflow/hooks"
)

// KeyStrategy selects how the hook derives a limiter key from a context.
type KeyStrategy string

const (
	KeyGlobal    KeyStrategy = "global"    // single shared bucket
	KeyAgentID   KeyStrategy = "agent_id"  // from context.Agent.Metadata()["agent_id"]
	KeyHookPoint KeyStrategy = "hook_point" // one bucket per point
	KeyCustom    KeyStrategy = "custom"     // caller-supplied KeyFn
)

// Hook runs at highest priority (to short-circuit early) and denies with
// a RateLimitError when the configured Limiter rejects the derived key.
type Hook struct {
	hooks.BaseHook
	Limiter      Limiter
	Strategy     KeyStrategy
	KeyFn        func(hctx *hooks.Context) string
	Cost         float64
	BlockOnLimit bool

	mu    sync.Mutex
	stats struct {
		requests  int64
		blocked   int64
		totalCost float64
	}
}

func NewHook(id string, limiter Limiter, strategy KeyStrategy, cost float64) *Hook {
	return &Hook{
		BaseHook: hooks.BaseHook{
			IDValue:       id,
			NameValue:     id,
			PriorityValue: hooks.PriorityHighest,
			EnabledValue:  true,
		},
		Limiter:      limiter,
		Strategy:     strategy,
		Cost:         cost,
		BlockOnLimit: true,
	}
}

func (h *Hook) deriveKey(hctx *hooks.Context) string {
	switch h.Strategy {
	case KeyAgentID:
		if hctx.Agent != nil {
			if v, ok := hctx.Agent.Metadata()["agent_id"]; ok {
				if s, ok := v.(string); ok {
					return s
				}
			}
		}
		return "unknown-agent"
	case KeyHookPoint:
		return string(hctx.Point)
	case KeyCustom:
		if h.KeyFn != nil {
			return h.KeyFn(hctx)
		}
		return "custom"
	default:
		return "global"
	}
}

func (h *Hook) Execute(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
	if !h.Enabled() {
		return hooks.DefaultContinue(), nil
	}

	key := h.deriveKey(hctx)
	cost := h.Cost
	if cost <= 0 {
		cost = 1
	}
	result := h.Limiter.CheckLimit(key, cost)

	h.mu.Lock()
	h.stats.requests++
	h.stats.totalCost += cost
	if !result.Allowed {
		h.stats.blocked++
	}
	h.mu.Unlock()

	if result.Allowed || !h.BlockOnLimit {
		return hooks.DefaultContinue(), nil
	}

	return hooks.Result{
		ContinueProcessing: false,
		ModifiedData: map[string]interface{}{
			"X-RateLimit-Limit":      limitOf(h.Limiter),
			"X-RateLimit-Remaining":  result.Remaining,
			"X-RateLimit-Reset":      result.ResetTime.Unix(),
			"X-RateLimit-RetryAfter": strconv.FormatInt(result.RetryAfterMs, 10),
		},
		ErrorInfo: &hooks.ErrorInfo{
			Message:      "rate limit exceeded",
			ErrorType:    "RateLimitError",
			Recoverable:  false,
			RetryAfterMs: result.RetryAfterMs,
		},
	}, nil
}

func limitOf(l Limiter) interface{} {
	switch t := l.(type) {
	case *TokenBucket:
		return t.BucketSize
	case *SlidingWindow:
		return t.Limit
	default:
		return nil
	}
}

func (h *Hook) GetMetrics() map[string]interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	blockRate := 0.0
	if h.stats.requests > 0 {
		blockRate = float64(h.stats.blocked) / float64(h.stats.requests)
	}
	return map[string]interface{}{
		"requests":   h.stats.requests,
		"blocked":    h.stats.blocked,
		"total_cost": h.stats.totalCost,
		"block_rate": blockRate,
	}
}

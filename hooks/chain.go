package hooks

import (
	"context"
	"sort"
	"sync"
)

// Chain is a priority-ordered, thread-safe collection of hooks, re-sorted
// on every insertion (chains are expected to stay small, so this is
// acceptable per the component's design notes).
type Chain struct {
	mu    sync.Mutex
	hooks []Hook
	seq   []int64 // insertion sequence, parallel to hooks, for tie-break
	next  int64
}

func NewChain() *Chain {
	return &Chain{}
}

// Add inserts a hook and re-sorts by ascending priority, breaking ties by
// insertion order.
func (c *Chain) Add(h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
	c.seq = append(c.seq, c.next)
	c.next++
	c.sortLocked()
}

// Remove deletes the hook with the given id, reporting whether it was
// present.
func (c *Chain) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, h := range c.hooks {
		if h.ID() == id {
			c.hooks = append(c.hooks[:i], c.hooks[i+1:]...)
			c.seq = append(c.seq[:i], c.seq[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports the number of hooks currently in the chain.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hooks)
}

// Snapshot returns a priority-ordered copy of the hook list, safe to
// iterate without holding the chain's lock.
func (c *Chain) Snapshot() []Hook {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Hook, len(c.hooks))
	copy(out, c.hooks)
	return out
}

func (c *Chain) sortLocked() {
	type entry struct {
		h   Hook
		seq int64
	}
	entries := make([]entry, len(c.hooks))
	for i := range c.hooks {
		entries[i] = entry{h: c.hooks[i], seq: c.seq[i]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := entries[i].h.Priority(), entries[j].h.Priority()
		if pi != pj {
			return pi < pj
		}
		return entries[i].seq < entries[j].seq
	})
	for i := range entries {
		c.hooks[i] = entries[i].h
		c.seq[i] = entries[i].seq
	}
}

// Execute runs the chain's hooks in priority order against hctx,
// implementing §4.1's merge semantics: it sets TotalHooks/HookIndex as it
// goes, skips disabled or point-mismatched hooks with a default-continue
// result, folds each result into the running aggregate, propagates
// modified_data into hctx.InputData for the next hook, and stops on the
// first result whose ContinueProcessing is false.
func (c *Chain) Execute(ctx context.Context, hctx *Context) (Result, error) {
	snap := c.Snapshot()
	hctx.TotalHooks = len(snap)

	agg := DefaultContinue()
	for i, h := range snap {
		hctx.HookIndex = i

		if !h.Enabled() || !Supports(h, hctx.Point) {
			agg = agg.Merge(DefaultContinue())
			continue
		}

		r, err := h.Execute(ctx, hctx)
		if err != nil {
			return agg, err
		}

		if r.ModifiedData != nil {
			hctx.InputData = r.ModifiedData
		}
		agg = agg.Merge(r)

		if !r.ContinueProcessing {
			break
		}
	}
	return agg, nil
}

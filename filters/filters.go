// Package filters implements pure predicates that decide whether a
// wrapped hook should run for a given context; a filter that rejects
// yields a default continue result without invoking the hook.
package filters

import (
	"context"

	"github.com/agentkit/hookflow/hooks"
)

// Filter decides whether a wrapped hook should execute for hctx.
type Filter interface {
	Allow(h hooks.Hook, hctx *hooks.Context) bool
}

// Func adapts a plain predicate into a Filter.
type Func func(h hooks.Hook, hctx *hooks.Context) bool

func (f Func) Allow(h hooks.Hook, hctx *hooks.Context) bool { return f(h, hctx) }

// PointFilter allows hctx.Point membership in a fixed set.
type PointFilter struct {
	Points map[hooks.Point]struct{}
}

func NewPointFilter(points ...hooks.Point) *PointFilter {
	set := make(map[hooks.Point]struct{}, len(points))
	for _, p := range points {
		set[p] = struct{}{}
	}
	return &PointFilter{Points: set}
}

func (f *PointFilter) Allow(h hooks.Hook, hctx *hooks.Context) bool {
	_, ok := f.Points[hctx.Point]
	return ok
}

// PredicateFilter wraps an arbitrary boolean function of (hook, context).
type PredicateFilter struct {
	Predicate func(h hooks.Hook, hctx *hooks.Context) bool
}

func (f *PredicateFilter) Allow(h hooks.Hook, hctx *hooks.Context) bool {
	return f.Predicate(h, hctx)
}

// Wrap produces a hooks.Hook whose Execute only runs inner.Execute when
// every filter allows it; otherwise it returns a default-continue result.
type Wrap struct {
	hooks.BaseHook
	Inner   hooks.Hook
	Filters []Filter
}

func NewWrap(inner hooks.Hook, filters ...Filter) *Wrap {
	return &Wrap{
		BaseHook: hooks.BaseHook{
			IDValue:       inner.ID(),
			NameValue:     inner.Name(),
			DescriptionValue: inner.Description(),
			PriorityValue: inner.Priority(),
			Points:        inner.SupportedPoints(),
			EnabledValue:  inner.Enabled(),
			ConfigValue:   inner.Config(),
		},
		Inner:   inner,
		Filters: filters,
	}
}

func (w *Wrap) Execute(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
	for _, f := range w.Filters {
		if !f.Allow(w.Inner, hctx) {
			return hooks.DefaultContinue(), nil
		}
	}
	return w.Inner.Execute(ctx, hctx)
}

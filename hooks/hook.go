package hooks

import "context"

// Hook is the capability every interceptor implements. Init/Deinit/
// ValidateConfig and GetMetrics are optional: they live in the separate
// Initializer, Deinitializer, Validator and MetricsProvider interfaces,
// which are probed by type assertion.
type Hook interface {
	ID() string
	Name() string
	Description() string
	Priority() Priority
	SupportedPoints() []Point
	Enabled() bool
	SetEnabled(bool)
	Config() map[string]interface{}

	Execute(ctx context.Context, hctx *Context) (Result, error)
}

// Initializer is implemented by hooks that need one-time setup before
// first use.
type Initializer interface {
	Init(ctx context.Context) error
}

// Deinitializer is implemented by hooks that need to release resources
// when removed from a registry.
type Deinitializer interface {
	Deinit(ctx context.Context) error
}

// Validator is implemented by hooks that can self-check their config.
type Validator interface {
	ValidateConfig() error
}

// MetricsProvider is implemented by hooks exposing their own counters for
// Registry.CollectHookMetrics to gather, keyed by hook id.
type MetricsProvider interface {
	GetMetrics() map[string]interface{}
}

// Supports reports whether a hook should run for the given point: an
// explicit match, or a wildcard declaration of Custom. A hook with no
// declared points is global and matches every point — that is what places
// it in the registry's global chain, which runs for all points.
func Supports(h Hook, point Point) bool {
	pts := h.SupportedPoints()
	if len(pts) == 0 {
		return true
	}
	for _, p := range pts {
		if p == point || p == Custom {
			return true
		}
	}
	return false
}

// IsGlobal reports whether a hook belongs in the registry's global chain:
// it declared no explicit points, or its declared points include the
// Custom wildcard (custom ≡ all points). The global chain is the only
// placement that runs for every point, so a per-point chain entry under
// the literal Custom key would never fire for anything else.
func IsGlobal(h Hook) bool {
	pts := h.SupportedPoints()
	if len(pts) == 0 {
		return true
	}
	for _, p := range pts {
		if p == Custom {
			return true
		}
	}
	return false
}

// BaseHook provides the bookkeeping fields (id/name/priority/points/
// enabled/config) that concrete hooks embed, leaving Execute to be
// implemented by the embedder.
type BaseHook struct {
	IDValue          string
	NameValue        string
	DescriptionValue string
	PriorityValue    Priority
	Points           []Point
	EnabledValue     bool
	ConfigValue      map[string]interface{}
}

func (b *BaseHook) ID() string                        { return b.IDValue }
func (b *BaseHook) Name() string                      { return b.NameValue }
func (b *BaseHook) Description() string               { return b.DescriptionValue }
func (b *BaseHook) Priority() Priority                { return b.PriorityValue }
func (b *BaseHook) SupportedPoints() []Point          { return b.Points }
func (b *BaseHook) Enabled() bool                     { return b.EnabledValue }
func (b *BaseHook) SetEnabled(v bool)                 { b.EnabledValue = v }
func (b *BaseHook) Config() map[string]interface{}    { return b.ConfigValue }

// FuncHook adapts a plain function into a Hook, for ad hoc/test hooks that
// do not need lifecycle callbacks.
type FuncHook struct {
	BaseHook
	Fn func(ctx context.Context, hctx *Context) (Result, error)
}

func (f *FuncHook) Execute(ctx context.Context, hctx *Context) (Result, error) {
	return f.Fn(ctx, hctx)
}

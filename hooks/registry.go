package hooks

import (
	"context"
	"sync"

	"github.com/agentkit/hookflow/corerr"
)

// Factory builds a Hook instance from an id and opaque config, used by
// Registry.Create for callers that register hook types before they
// register concrete instances (mirrors the spec's factory/instance split).
type Factory func(id string, config map[string]interface{}) (Hook, error)

// Registry owns the factories map, the hook-instance map, one chain per
// point, and a single global chain. Every operation is serialized under a
// single mutex; chain execution itself does not hold the registry's lock.
type Registry struct {
	mu sync.Mutex

	factories map[string]Factory
	instances map[string]Hook
	chains    map[Point]*Chain
	global    *Chain
}

func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{},
		instances: map[string]Hook{},
		chains:    map[Point]*Chain{},
		global:    NewChain(),
	}
}

// RegisterFactory associates a hook type name with a constructor.
func (r *Registry) RegisterFactory(hookType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[hookType] = f
}

// Create builds a hook via its registered factory and registers the
// resulting instance. Returns ErrHookTypeNotFound if no factory is
// registered under hookType.
func (r *Registry) Create(ctx context.Context, hookType, id string, config map[string]interface{}) (Hook, error) {
	r.mu.Lock()
	f, ok := r.factories[hookType]
	r.mu.Unlock()
	if !ok {
		return nil, corerr.New("Registry.Create", corerr.ErrHookTypeNotFound, hookType, "no factory registered for hook type")
	}
	h, err := f(id, config)
	if err != nil {
		return nil, corerr.Wrap("Registry.Create", corerr.ErrHookTypeNotFound, hookType, err)
	}
	if err := r.Register(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Register places h into the global chain (if it declared no explicit
// points, or declared the Custom wildcard) or into the chain for each of
// its supported points. A duplicate id replaces the prior instance,
// deinitializing it first.
func (r *Registry) Register(ctx context.Context, h Hook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, exists := r.instances[h.ID()]; exists {
		r.removeFromChainsLocked(prior)
		if d, ok := prior.(Deinitializer); ok {
			_ = d.Deinit(ctx)
		}
	}

	if init, ok := h.(Initializer); ok {
		if err := init.Init(ctx); err != nil {
			return corerr.Wrap("Registry.Register", corerr.ErrHookTypeNotFound, h.ID(), err)
		}
	}

	r.instances[h.ID()] = h
	if IsGlobal(h) {
		r.global.Add(h)
		return nil
	}
	for _, p := range h.SupportedPoints() {
		r.chainFor(p).Add(h)
	}
	return nil
}

// Unregister removes a hook by id from every chain it appeared in and
// deinitializes it. Returns ErrHookNotFound if no such id is registered.
func (r *Registry) Unregister(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.instances[id]
	if !ok {
		return corerr.New("Registry.Unregister", corerr.ErrHookNotFound, id, "hook not registered")
	}
	r.removeFromChainsLocked(h)
	delete(r.instances, id)
	if d, ok := h.(Deinitializer); ok {
		return d.Deinit(ctx)
	}
	return nil
}

func (r *Registry) removeFromChainsLocked(h Hook) {
	if IsGlobal(h) {
		r.global.Remove(h.ID())
		return
	}
	for _, p := range h.SupportedPoints() {
		if c, ok := r.chains[p]; ok {
			c.Remove(h.ID())
		}
	}
}

func (r *Registry) chainFor(p Point) *Chain {
	c, ok := r.chains[p]
	if !ok {
		c = NewChain()
		r.chains[p] = c
	}
	return c
}

// Executor binds the global chain and a point-specific chain together,
// running global first and then the point chain, folding their results.
type Executor struct {
	global *Chain
	point  *Chain
}

// GetHooksForPoint returns an Executor that will run the global chain
// then the chain registered for point p.
func (r *Registry) GetHooksForPoint(p Point) *Executor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Executor{global: r.global, point: r.chainFor(p)}
}

// Execute runs the global chain, then (if the global result still permits
// continuation) the point-specific chain, merging modified_data and
// metrics across both and short-circuiting on either's error_info.
func (e *Executor) Execute(ctx context.Context, hctx *Context) (Result, error) {
	agg, err := e.global.Execute(ctx, hctx)
	if err != nil {
		return agg, err
	}
	if !agg.ShouldContinue() {
		return agg, nil
	}

	r, err := e.point.Execute(ctx, hctx)
	if err != nil {
		return agg, err
	}
	return agg.Merge(r), nil
}

// CollectHookMetrics gathers GetMetrics() output from every registered
// hook that implements MetricsProvider, keyed by hook id. Each hook's
// metric names are returned as it reports them; nothing is written to a
// telemetry registry.
func (r *Registry) CollectHookMetrics() map[string]map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]map[string]interface{}{}
	for id, h := range r.instances {
		if mp, ok := h.(MetricsProvider); ok {
			out[id] = mp.GetMetrics()
		}
	}
	return out
}

// Get returns a registered hook instance by id.
func (r *Registry) Get(id string) (Hook, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.instances[id]
	return h, ok
}

var (
	defaultMu       sync.RWMutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
// Prefer constructing a Registry explicitly and passing it down; this
// accessor exists for hosts that want one shared registry without
// plumbing.
func Default() *Registry {
	defaultMu.RLock()
	r := defaultRegistry
	defaultMu.RUnlock()
	if r != nil {
		return r
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// SetDefault replaces the process-wide registry (e.g. with a fresh one in
// tests).
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = r
}

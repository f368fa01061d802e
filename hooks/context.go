package hooks

import (
	"sync"
	"time"
)

// AgentRef is the minimal read-only view of an agent a hook may inspect.
// The concrete agent type lives outside this module; hooks only ever see
// this capability.
type AgentRef interface {
	Metadata() map[string]interface{}
}

// RunRef is the run-scoped handle every Context carries; it is the
// anchor hooks use to correlate work across a single invocation.
type RunRef interface {
	RunID() string
}

// Context is the per-invocation value passed through a chain execution.
// Its lifetime is exactly one Chain.Execute call.
type Context struct {
	Point      Point
	Agent      AgentRef
	Run        RunRef
	InputData  map[string]interface{}
	OutputData map[string]interface{}
	Metadata   map[string]interface{}
	StartTime  time.Time
	HookIndex  int
	TotalHooks int

	// Enhanced back-references the owning EnhancedContext when this
	// Context was obtained from one, letting hooks that need the state
	// store (e.g. a tracing hook threading an explicit span handle)
	// recover it without the chain/registry plumbing an EnhancedContext
	// type through every signature.
	Enhanced *EnhancedContext
}

// NewContext builds a Context ready for a chain execution.
func NewContext(point Point, run RunRef, input map[string]interface{}) *Context {
	if input == nil {
		input = map[string]interface{}{}
	}
	return &Context{
		Point:     point,
		Run:       run,
		InputData: input,
		Metadata:  map[string]interface{}{},
		StartTime: time.Now(),
	}
}

// TransformationEntry records one hook's effect on input_data, used by
// EnhancedContext's transformation log for post-hoc debugging.
type TransformationEntry struct {
	HookID string
	At     time.Time
	Before map[string]interface{}
	After  map[string]interface{}
}

// StateStore is a simple thread-safe JSON-value KV store, shared by
// reference between a parent EnhancedContext and its children.
type StateStore struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

func NewStateStore() *StateStore {
	return &StateStore{data: map[string]interface{}{}}
}

func (s *StateStore) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *StateStore) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *StateStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// ExecutionMetrics holds the counters/gauges/timers an EnhancedContext
// accumulates over its lifetime, independent of the shared telemetry
// registry (this is per-context bookkeeping, e.g. for a transformation
// log summary).
type ExecutionMetrics struct {
	mu      sync.Mutex
	Counters map[string]int64
	Gauges   map[string]float64
	Timers   map[string]time.Duration
}

func newExecutionMetrics() *ExecutionMetrics {
	return &ExecutionMetrics{
		Counters: map[string]int64{},
		Gauges:   map[string]float64{},
		Timers:   map[string]time.Duration{},
	}
}

func (m *ExecutionMetrics) Incr(name string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters[name] += delta
}

func (m *ExecutionMetrics) SetGauge(name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gauges[name] = v
}

func (m *ExecutionMetrics) RecordTimer(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Timers[name] = d
}

// EnhancedContext extends Context with an owned state store, a weak
// parent back-reference, an owned child list, execution metrics, trace
// info, an error accumulator, and a transformation log.
type EnhancedContext struct {
	*Context

	State *StateStore

	parent   *EnhancedContext
	mu       sync.Mutex
	children []*EnhancedContext

	Metrics *ExecutionMetrics

	TraceSpanID string // free-form trace id; telemetry's TracingHook does not use it and keeps its SpanHandle stack in State

	errMu  sync.Mutex
	Errors []error

	logMu          sync.Mutex
	Transformations []TransformationEntry
}

// NewEnhancedContext builds a root EnhancedContext owning a fresh state
// store.
func NewEnhancedContext(point Point, run RunRef, input map[string]interface{}) *EnhancedContext {
	e := &EnhancedContext{
		Context: NewContext(point, run, input),
		State:   NewStateStore(),
		Metrics: newExecutionMetrics(),
	}
	e.Context.Enhanced = e
	return e
}

// NewChild creates a child context sharing this context's state store by
// reference, with a non-owning back-reference to the parent. The child is
// appended to the parent's owned child list.
func (e *EnhancedContext) NewChild(point Point, input map[string]interface{}) *EnhancedContext {
	child := &EnhancedContext{
		Context: NewContext(point, e.Run, input),
		State:   e.State,
		parent:  e,
		Metrics: newExecutionMetrics(),
	}
	child.Context.Enhanced = child
	e.mu.Lock()
	e.children = append(e.children, child)
	e.mu.Unlock()
	return child
}

// Parent returns the non-owning parent back-reference, or nil for a root
// context.
func (e *EnhancedContext) Parent() *EnhancedContext { return e.parent }

// Children returns a snapshot of the owned child list.
func (e *EnhancedContext) Children() []*EnhancedContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*EnhancedContext, len(e.children))
	copy(out, e.children)
	return out
}

// RecordError appends to the error accumulator.
func (e *EnhancedContext) RecordError(err error) {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	e.Errors = append(e.Errors, err)
}

// LogTransformation appends one entry to the transformation log.
func (e *EnhancedContext) LogTransformation(hookID string, before, after map[string]interface{}) {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	e.Transformations = append(e.Transformations, TransformationEntry{
		HookID: hookID,
		At:     time.Now(),
		Before: before,
		After:  after,
	})
}

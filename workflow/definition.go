// Package workflow implements the workflow definition model and the
// executors (sequential, parallel, conditional, loop), error handling
// (retry policies, circuit breaker, compensation), and state management
// that drive a workflow from definition to completion.
package workflow

// StepKind names the dispatchable step shapes a StepDefinition may take.
type StepKind string

const (
	StepAgent      StepKind = "agent"
	StepTool       StepKind = "tool"
	StepCondition  StepKind = "condition"
	StepLoop       StepKind = "loop"
	StepParallel   StepKind = "parallel"
	StepSequential StepKind = "sequential"
	StepScript     StepKind = "script"
	StepDelay      StepKind = "delay"
	StepTransform  StepKind = "transform"
)

// RetryConfig is a step's own local retry knobs, distinct from the richer
// RetryPolicy used by WorkflowErrorHandler.
type RetryConfig struct {
	Count   int `yaml:"count,omitempty" json:"count,omitempty"`
	DelayMs int `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"`
}

// StepDefinition is one node in a workflow's step list. Only the fields
// relevant to Kind are expected to be populated; the rest are zero.
type StepDefinition struct {
	ID              string                 `yaml:"id" json:"id"`
	Kind            StepKind               `yaml:"kind" json:"kind"`
	Description     string                 `yaml:"description,omitempty" json:"description,omitempty"`
	TimeoutMs       int64                  `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
	RetryCount      int                    `yaml:"retry_count,omitempty" json:"retry_count,omitempty"`
	RetryDelayMs    int64                  `yaml:"retry_delay_ms,omitempty" json:"retry_delay_ms,omitempty"`
	ContinueOnError bool                   `yaml:"continue_on_error,omitempty" json:"continue_on_error,omitempty"`
	Tags            []string               `yaml:"tags,omitempty" json:"tags,omitempty"`

	// agent / tool
	TargetName string                 `yaml:"target_name,omitempty" json:"target_name,omitempty"`
	InputMap   map[string]string     `yaml:"input_map,omitempty" json:"input_map,omitempty"`
	OutputMap  map[string]string     `yaml:"output_map,omitempty" json:"output_map,omitempty"`

	// sequential / parallel
	Steps          []StepDefinition `yaml:"steps,omitempty" json:"steps,omitempty"`
	MaxConcurrency int              `yaml:"max_concurrency,omitempty" json:"max_concurrency,omitempty"`
	FailFast       bool             `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty"`
	WaitForAll     bool             `yaml:"wait_for_all,omitempty" json:"wait_for_all,omitempty"`
	DependsOn      []string         `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`

	// condition
	Condition  string           `yaml:"condition,omitempty" json:"condition,omitempty"`
	TrueSteps  []StepDefinition `yaml:"true_steps,omitempty" json:"true_steps,omitempty"`
	FalseSteps []StepDefinition `yaml:"false_steps,omitempty" json:"false_steps,omitempty"`

	// loop
	LoopKind      LoopKind         `yaml:"loop_kind,omitempty" json:"loop_kind,omitempty"`
	MaxIterations int              `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"`
	BreakOnError  bool             `yaml:"break_on_error,omitempty" json:"break_on_error,omitempty"`
	Body          []StepDefinition `yaml:"body,omitempty" json:"body,omitempty"`

	// delay
	DurationMs   int64 `yaml:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	JitterPct    int   `yaml:"jitter_percent,omitempty" json:"jitter_percent,omitempty"`

	// script
	Interpreter string `yaml:"interpreter,omitempty" json:"interpreter,omitempty"`
	Script      string `yaml:"script,omitempty" json:"script,omitempty"`

	// transform
	Transform string `yaml:"transform,omitempty" json:"transform,omitempty"`
}

// LoopKind selects a LoopExecutor variant.
type LoopKind string

const (
	LoopWhile   LoopKind = "while"
	LoopFor     LoopKind = "for"
	LoopForeach LoopKind = "foreach"
)

// Definition is an immutable workflow: identity, step list, and schema
// metadata. Callers build one with NewDefinition and never mutate it after
// construction; executors only read from it.
type Definition struct {
	ID              string                 `yaml:"id" json:"id"`
	Name            string                 `yaml:"name" json:"name"`
	Description     string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Version         string                 `yaml:"version,omitempty" json:"version,omitempty"`
	Steps           []StepDefinition       `yaml:"steps" json:"steps"`
	InputSchema     map[string]interface{} `yaml:"input_schema,omitempty" json:"input_schema,omitempty"`
	OutputSchema    map[string]interface{} `yaml:"output_schema,omitempty" json:"output_schema,omitempty"`
	VariableDefaults map[string]interface{} `yaml:"variable_defaults,omitempty" json:"variable_defaults,omitempty"`
	Metadata        map[string]interface{} `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// NewDefinition copies steps so later mutation of the caller's slice does
// not reach back into the returned Definition.
func NewDefinition(id, name string, steps []StepDefinition) *Definition {
	cp := make([]StepDefinition, len(steps))
	copy(cp, steps)
	return &Definition{ID: id, Name: name, Steps: cp}
}

// Package hooks implements the hook type system, priority chain, and
// registry at the center of the execution core: user-supplied interceptors
// bound to named lifecycle points, composed into priority-ordered chains
// that mutate a per-invocation context as they run.
package hooks

// Point is a named lifecycle moment at which hooks may run. Custom acts as
// a wildcard: a hook whose SupportedPoints includes Custom matches every
// point.
type Point string

const (
	AgentInit             Point = "agent_init"
	AgentBeforeRun        Point = "agent_before_run"
	AgentAfterRun         Point = "agent_after_run"
	AgentCleanup          Point = "agent_cleanup"
	AgentError            Point = "agent_error"
	WorkflowStart         Point = "workflow_start"
	WorkflowStepStart     Point = "workflow_step_start"
	WorkflowStepComplete  Point = "workflow_step_complete"
	WorkflowStepError     Point = "workflow_step_error"
	WorkflowComplete      Point = "workflow_complete"
	WorkflowError         Point = "workflow_error"
	ToolBeforeExecute     Point = "tool_before_execute"
	ToolAfterExecute      Point = "tool_after_execute"
	ToolError             Point = "tool_error"
	ProviderBeforeRequest Point = "provider_before_request"
	ProviderAfterResponse Point = "provider_after_response"
	ProviderError         Point = "provider_error"
	MemoryBeforeSave      Point = "memory_before_save"
	MemoryAfterLoad       Point = "memory_after_load"
	Custom                Point = "custom"
)

// Priority is a totally-ordered execution rank; lower runs earlier.
type Priority int

const (
	PriorityHighest Priority = -1000
	PriorityHigh    Priority = -100
	PriorityNormal  Priority = 0
	PriorityLow     Priority = 100
	PriorityLowest  Priority = 1000
)

// ErrorInfo is the structured error payload a hook attaches to a Result
// when something recoverable (or not) happened during execute.
type ErrorInfo struct {
	Message      string `json:"message"`
	ErrorType    string `json:"error_type"`
	Recoverable  bool   `json:"recoverable"`
	RetryAfterMs int64  `json:"retry_after_ms,omitempty"`
}

// Result is the record every hook execute call returns.
type Result struct {
	ContinueProcessing bool                   `json:"continue_processing"`
	ModifiedData       map[string]interface{} `json:"modified_data,omitempty"`
	Metrics            map[string]interface{} `json:"metrics,omitempty"`
	ErrorInfo          *ErrorInfo             `json:"error_info,omitempty"`
}

// ShouldContinue implements the spec's continuation predicate:
// continue_processing && error_info == nil.
func (r Result) ShouldContinue() bool {
	return r.ContinueProcessing && r.ErrorInfo == nil
}

// DefaultContinue is the sentinel result returned when a hook is skipped
// (disabled, or does not support the current point).
func DefaultContinue() Result {
	return Result{ContinueProcessing: true}
}

// Merge folds r into the running aggregate per the chain-execution merge
// rules in §4.1: modified_data overwrites, metrics overwrites, error_info
// (when present) forces continue_processing to its Recoverable flag.
func (agg Result) Merge(r Result) Result {
	out := agg
	if r.ModifiedData != nil {
		out.ModifiedData = r.ModifiedData
	}
	if r.Metrics != nil {
		out.Metrics = r.Metrics
	}
	if r.ErrorInfo != nil {
		out.ErrorInfo = r.ErrorInfo
		out.ContinueProcessing = r.ErrorInfo.Recoverable
	} else {
		out.ContinueProcessing = r.ContinueProcessing
	}
	return out
}

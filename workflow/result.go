package workflow

// StepOutcome is one step's result as recorded into an ExecutionContext's
// step_results map.
type StepOutcome struct {
	Success bool        `json:"success"`
	Output  interface{} `json:"output,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Result is the terminal record any top-level workflow invocation (or
// nested sub-executor call) returns.
type Result struct {
	Success         bool                   `json:"success"`
	CompletedSteps  int                    `json:"completed_steps"`
	FailedStep      string                 `json:"failed_step,omitempty"`
	ErrorMessage    string                 `json:"error_message,omitempty"`
	StepResults     map[string]interface{} `json:"step_results"`
	ExecutionTimeMs int64                  `json:"execution_time_ms"`
}

// AgentInvoker and ToolInvoker are the external capabilities the step
// dispatcher calls through for agent/tool steps; the concrete registries
// backing them live outside this module (§6 External Interfaces).
type AgentInvoker interface {
	InvokeAgent(name string, input map[string]interface{}) (map[string]interface{}, error)
}

type ToolInvoker interface {
	InvokeTool(name string, input map[string]interface{}) (map[string]interface{}, error)
}

package hookflow

import (
	"github.com/agentkit/hookflow/corelog"
	"github.com/agentkit/hookflow/hooks"
	"github.com/agentkit/hookflow/telemetry"
	"github.com/agentkit/hookflow/workflow"
)

// Config carries everything an Engine needs. Callers assemble one through
// functional options; zero-value fields fall back to working in-process
// defaults (no-op logger, fresh registries). With no Store, nothing is
// persisted: no state records and no checkpoints are written.
type Config struct {
	Logger    corelog.Logger
	Hooks     *hooks.Registry
	Telemetry *telemetry.Registry
	Metrics   *workflow.Metrics

	Store              workflow.KVStore
	CheckpointStrategy workflow.CheckpointStrategy

	Agents workflow.AgentInvoker
	Tools  workflow.ToolInvoker

	ContinueOnError   bool
	MaxStepRetries    int
	WorkflowTimeoutMs int64
}

// Option mutates a Config during New.
type Option func(*Config)

func WithLogger(l corelog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func WithHookRegistry(r *hooks.Registry) Option {
	return func(c *Config) { c.Hooks = r }
}

func WithTelemetry(r *telemetry.Registry) Option {
	return func(c *Config) { c.Telemetry = r }
}

func WithMetrics(m *workflow.Metrics) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithStateStore enables state persistence and checkpointing over the
// given backend.
func WithStateStore(s workflow.KVStore) Option {
	return func(c *Config) { c.Store = s }
}

func WithCheckpointStrategy(s workflow.CheckpointStrategy) Option {
	return func(c *Config) { c.CheckpointStrategy = s }
}

func WithAgentInvoker(a workflow.AgentInvoker) Option {
	return func(c *Config) { c.Agents = a }
}

func WithToolInvoker(t workflow.ToolInvoker) Option {
	return func(c *Config) { c.Tools = t }
}

// WithContinueOnError makes every step failure non-fatal at the executor
// level, independent of per-step continue_on_error flags.
func WithContinueOnError(v bool) Option {
	return func(c *Config) { c.ContinueOnError = v }
}

func WithMaxStepRetries(n int) Option {
	return func(c *Config) { c.MaxStepRetries = n }
}

// WithWorkflowTimeout caps a whole Run's wall-clock time in milliseconds.
func WithWorkflowTimeout(ms int64) Option {
	return func(c *Config) { c.WorkflowTimeoutMs = ms }
}

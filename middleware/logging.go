package middleware

import (
	"context"
	"time"

	"github.com/agentkit/hookflow/corelog"
	"github.com/agentkit/hookflow/hooks"
)

// Level selects how verbosely LoggingMiddleware reports a hook invocation.
type Level string

const (
	LevelDebug Level = "debug" // every invocation, regardless of outcome
	LevelInfo  Level = "info"  // errors and slow invocations only
)

// Logging records start/end/duration/result at a configurable level. At
// LevelInfo it is quiet unless the hook errored or exceeded SlowThreshold.
type Logging struct {
	Log           corelog.Logger
	Level         Level
	SlowThreshold time.Duration
}

func NewLogging(log corelog.Logger, level Level, slowThreshold time.Duration) *Logging {
	return &Logging{Log: log, Level: level, SlowThreshold: slowThreshold}
}

func (m *Logging) Process(ctx context.Context, h hooks.Hook, hctx *hooks.Context, next Next) (hooks.Result, error) {
	start := time.Now()
	r, err := next(ctx, hctx)
	dur := time.Since(start)

	slow := m.SlowThreshold > 0 && dur >= m.SlowThreshold
	hasErr := err != nil || r.ErrorInfo != nil

	if m.Level == LevelDebug || hasErr || slow {
		kv := []interface{}{"hook_id", h.ID(), "point", string(hctx.Point), "duration_ms", dur.Milliseconds(), "continue", r.ContinueProcessing}
		if err != nil {
			m.Log.Error(err, "hook execution failed", kv...)
		} else if r.ErrorInfo != nil {
			m.Log.Warn("hook returned error_info", append(kv, "error_type", r.ErrorInfo.ErrorType)...)
		} else {
			m.Log.Info("hook executed", kv...)
		}
	}
	return r, err
}

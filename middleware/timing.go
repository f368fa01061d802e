package middleware

import (
	"context"
	"time"

	"github.com/agentkit/hookflow/hooks"
)

// Timing wraps next and stamps the measured wall-clock duration into the
// result's metrics under "duration_ms". This is the fix for the source's
// metrics hook bug noted in the design notes: duration must be measured by
// something that actually wraps the downstream invocation, not computed
// inside the hook itself.
type Timing struct {
	MetricKey string // defaults to "duration_ms"
}

func NewTiming() *Timing {
	return &Timing{MetricKey: "duration_ms"}
}

func (m *Timing) Process(ctx context.Context, h hooks.Hook, hctx *hooks.Context, next Next) (hooks.Result, error) {
	key := m.MetricKey
	if key == "" {
		key = "duration_ms"
	}

	start := time.Now()
	r, err := next(ctx, hctx)
	dur := time.Since(start)

	if r.Metrics == nil {
		r.Metrics = map[string]interface{}{}
	}
	r.Metrics[key] = float64(dur.Microseconds()) / 1000.0
	return r, err
}

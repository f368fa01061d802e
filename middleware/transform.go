package middleware

import (
	"context"

	"github.com/agentkit/hookflow/hooks"
)

// Transformation pre-transforms context.InputData before next, and
// post-transforms the result coming back.
type Transformation struct {
	PreTransform  func(map[string]interface{}) map[string]interface{}
	PostTransform func(hooks.Result) hooks.Result
}

func (m *Transformation) Process(ctx context.Context, h hooks.Hook, hctx *hooks.Context, next Next) (hooks.Result, error) {
	if m.PreTransform != nil {
		hctx.InputData = m.PreTransform(hctx.InputData)
	}
	r, err := next(ctx, hctx)
	if err != nil {
		return r, err
	}
	if m.PostTransform != nil {
		r = m.PostTransform(r)
	}
	return r, nil
}

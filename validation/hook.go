package validation

import (
	"context"
	"encoding/json"

	"github.com/agentkit/hookflow/hooks"
)

// Hook runs InputValidator against context.InputData; on invalidity (or
// any warning when FailOnWarning) it returns a non-continue Result with
// error kind ValidationError.
type Hook struct {
	hooks.BaseHook
	InputValidator  Validator
	OutputValidator Validator
	FailOnWarning   bool
}

func NewHook(id string, priority hooks.Priority, points []hooks.Point, input Validator) *Hook {
	return &Hook{
		BaseHook: hooks.BaseHook{
			IDValue:       id,
			NameValue:     id,
			PriorityValue: priority,
			Points:        points,
			EnabledValue:  true,
		},
		InputValidator: input,
	}
}

func (h *Hook) Execute(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
	if h.InputValidator == nil {
		return hooks.DefaultContinue(), nil
	}

	res := h.InputValidator.Validate(hctx.InputData)
	fails := !res.Valid || (h.FailOnWarning && len(res.Warnings) > 0)
	if !fails {
		return hooks.DefaultContinue(), nil
	}

	b, _ := json.Marshal(res)
	return hooks.Result{
		ContinueProcessing: false,
		ErrorInfo: &hooks.ErrorInfo{
			Message:     string(b),
			ErrorType:   "ValidationError",
			Recoverable: false,
		},
	}, nil
}

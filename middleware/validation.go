package middleware

import (
	"context"

	"github.com/agentkit/hookflow/hooks"
	"github.com/agentkit/hookflow/validation"
)

// ValidationPolicy selects what happens when input/output validation fails.
type ValidationPolicy string

const (
	PolicyPropagate ValidationPolicy = "propagate" // return a non-continue ValidationError result
	PolicySkipHook  ValidationPolicy = "skip_hook" // skip next, return default-continue
	PolicyUseDefault ValidationPolicy = "use_default" // skip next, return a caller-supplied default result
)

// Validation runs Input against context.InputData before next and Output
// against the result's ModifiedData after, applying Policy on failure.
type Validation struct {
	Input   validation.Validator
	Output  validation.Validator
	Policy  ValidationPolicy
	Default hooks.Result
}

func (m *Validation) Process(ctx context.Context, h hooks.Hook, hctx *hooks.Context, next Next) (hooks.Result, error) {
	if m.Input != nil {
		if res := m.Input.Validate(hctx.InputData); !res.Valid {
			return m.onFailure(res)
		}
	}

	r, err := next(ctx, hctx)
	if err != nil {
		return r, err
	}

	if m.Output != nil {
		if res := m.Output.Validate(r.ModifiedData); !res.Valid {
			return m.onFailure(res)
		}
	}
	return r, nil
}

func (m *Validation) onFailure(res validation.Result) (hooks.Result, error) {
	switch m.Policy {
	case PolicySkipHook:
		return hooks.DefaultContinue(), nil
	case PolicyUseDefault:
		return m.Default, nil
	default: // PolicyPropagate
		msg := "validation failed"
		if len(res.Errors) > 0 {
			msg = res.Errors[0].Message
		}
		return hooks.Result{
			ContinueProcessing: false,
			ErrorInfo: &hooks.ErrorInfo{
				Message:     msg,
				ErrorType:   "ValidationError",
				Recoverable: false,
			},
		}, nil
	}
}

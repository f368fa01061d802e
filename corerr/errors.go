// Package corerr defines the error taxonomy shared by every hookflow
// package: sentinel kinds plus a structured wrapper that carries enough
// context (operation, id, message) to classify an error without string
// matching.
package corerr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Components compare against these with errors.Is; they
// are never returned bare, always wrapped in a *FrameworkError.
var (
	ErrHookTypeNotFound   = errors.New("hook type not found")
	ErrHookNotFound       = errors.New("hook not found")
	ErrValidation         = errors.New("validation error")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrCircuitBreakerOpen = errors.New("circuit breaker open")
	ErrStepExecutionFailed = errors.New("step execution failed")
	ErrSubWorkflowFailed  = errors.New("sub-workflow failed")
	ErrRetryLimitExceeded = errors.New("retry limit exceeded")
	ErrTimeoutExceeded    = errors.New("timeout exceeded")
	ErrCompensationFailed = errors.New("compensation failed")
	ErrInvalidTraceHeader = errors.New("invalid trace header")
	ErrInvalidExpression  = errors.New("invalid expression")
	ErrExpressionNotImplemented = errors.New("expression dialect not implemented")
	ErrPathNotFound       = errors.New("path not found")
	ErrNotANumber         = errors.New("value is not a number")
	ErrKeyNotFound        = errors.New("key not found")
)

// FrameworkError wraps a sentinel Kind with the operation and identifier
// that produced it, following the Op/Kind/ID/Message/Err shape used
// throughout the framework this module is adapted from.
type FrameworkError struct {
	Op      string
	Kind    error
	ID      string
	Message string
	Err     error
}

func (e *FrameworkError) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	switch {
	case e.Op != "" && e.ID != "":
		return fmt.Sprintf("%s: %s (id=%s)", e.Op, msg, e.ID)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	default:
		return msg
	}
}

func (e *FrameworkError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is allows errors.Is(err, corerr.ErrValidation) to match a *FrameworkError
// whose Kind is that sentinel, even when Err is also set.
func (e *FrameworkError) Is(target error) bool {
	return e.Kind == target
}

// New builds a *FrameworkError for the given kind.
func New(op string, kind error, id, message string) *FrameworkError {
	return &FrameworkError{Op: op, Kind: kind, ID: id, Message: message}
}

// Wrap builds a *FrameworkError for the given kind, chaining an
// underlying cause.
func Wrap(op string, kind error, id string, err error) *FrameworkError {
	return &FrameworkError{Op: op, Kind: kind, ID: id, Err: err, Message: err.Error()}
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

func IsRetryable(err error) bool {
	switch {
	case IsKind(err, ErrRateLimit):
		return true
	case IsKind(err, ErrCircuitBreakerOpen):
		return false
	case IsKind(err, ErrTimeoutExceeded):
		return true
	case IsKind(err, ErrStepExecutionFailed):
		return true
	default:
		return false
	}
}

func IsRateLimited(err error) bool { return IsKind(err, ErrRateLimit) }

func IsCircuitOpen(err error) bool { return IsKind(err, ErrCircuitBreakerOpen) }

func IsValidation(err error) bool { return IsKind(err, ErrValidation) }

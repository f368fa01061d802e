// Package corelog is the ambient structured-logging facility used by every
// other hookflow package. It mirrors the small Logger capability shape
// used throughout the framework this module is adapted from, but backs it
// with a real logr.Logger so call sites never depend on a concrete logging
// engine.
package corelog

import "github.com/go-logr/logr"

// Logger is the capability every component logs through. KV pairs follow
// logr's alternating key/value convention.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(err error, msg string, kv ...interface{})
	WithName(name string) Logger
	WithValues(kv ...interface{}) Logger
}

// ComponentAwareLogger additionally tags every record with a component
// name, used by hooks/middleware that want to identify themselves in logs
// without plumbing a name through every call.
type ComponentAwareLogger interface {
	Logger
	Component() string
}

type logrLogger struct {
	l logr.Logger
}

// FromLogr adapts an existing logr.Logger (e.g. zapr.NewLogger(zapLogger))
// into the Logger capability.
func FromLogr(l logr.Logger) Logger {
	return &logrLogger{l: l}
}

func (l *logrLogger) Debug(msg string, kv ...interface{}) {
	l.l.V(1).Info(msg, kv...)
}

func (l *logrLogger) Info(msg string, kv ...interface{}) {
	l.l.Info(msg, kv...)
}

func (l *logrLogger) Warn(msg string, kv ...interface{}) {
	l.l.V(0).Info(msg, kv...)
}

func (l *logrLogger) Error(err error, msg string, kv ...interface{}) {
	l.l.Error(err, msg, kv...)
}

func (l *logrLogger) WithName(name string) Logger {
	return &logrLogger{l: l.l.WithName(name)}
}

func (l *logrLogger) WithValues(kv ...interface{}) Logger {
	return &logrLogger{l: l.l.WithValues(kv...)}
}

type componentLogger struct {
	Logger
	component string
}

// WithComponent tags a Logger with a component name for ComponentAwareLogger
// consumers (e.g. a Hook's own log lines).
func WithComponent(l Logger, component string) ComponentAwareLogger {
	return &componentLogger{Logger: l.WithValues("component", component), component: component}
}

func (c *componentLogger) Component() string { return c.component }

// noopLogger discards everything; used by default in tests and wherever a
// caller does not wire a real logger.
type noopLogger struct{}

// NoOp returns a Logger that discards all output, mirroring the
// zero-dependency default every component falls back to.
func NoOp() Logger { return noopLogger{} }

func (noopLogger) Debug(string, ...interface{})      {}
func (noopLogger) Info(string, ...interface{})       {}
func (noopLogger) Warn(string, ...interface{})       {}
func (noopLogger) Error(error, string, ...interface{}) {}
func (noopLogger) WithName(string) Logger             { return noopLogger{} }
func (noopLogger) WithValues(...interface{}) Logger   { return noopLogger{} }

package corelog

import (
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewProduction builds a Logger backed by zap's production encoder config,
// bridged through zapr so the rest of the module only ever sees the logr
// interface.
func NewProduction() (Logger, error) {
	zl, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return FromLogr(zapr.NewLogger(zl)), nil
}

// NewDevelopment builds a Logger with zap's human-readable console encoder.
// Nothing in this module selects it on its own; components given no logger
// fall back to NoOp().
func NewDevelopment() (Logger, error) {
	zl, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return FromLogr(zapr.NewLogger(zl)), nil
}

// NewAtLevel builds a Logger writing JSON to stdout at the given minimum
// zapcore.Level, for callers that want production encoding with a tunable
// verbosity (e.g. debug during integration tests).
func NewAtLevel(level zapcore.Level) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return FromLogr(zapr.NewLogger(zl)), nil
}

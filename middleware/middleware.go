// Package middleware implements the onion-model pipeline that wraps hook
// execution: each middleware inspects/mutates the context, calls next zero
// or more times, and may translate the result it gets back.
package middleware

import (
	"context"

	"github.com/agentkit/hookflow/hooks"
)

// Next is the continuation a middleware invokes to proceed to the next
// layer, terminating in the hook's own Execute.
type Next func(ctx context.Context, hctx *hooks.Context) (hooks.Result, error)

// Middleware wraps a hook invocation. Implementations may call next zero
// or more times (e.g. for retries) and may rewrite the result.
type Middleware interface {
	Process(ctx context.Context, h hooks.Hook, hctx *hooks.Context, next Next) (hooks.Result, error)
}

// Func adapts a plain function into a Middleware.
type Func func(ctx context.Context, h hooks.Hook, hctx *hooks.Context, next Next) (hooks.Result, error)

func (f Func) Process(ctx context.Context, h hooks.Hook, hctx *hooks.Context, next Next) (hooks.Result, error) {
	return f(ctx, h, hctx, next)
}

// Chain composes N middleware around a terminal step that invokes
// hook.Execute. Middleware execute outside-in; results propagate
// inside-out, matching the spec's ordering guarantee.
type Chain struct {
	layers []Middleware
}

func NewChain(layers ...Middleware) *Chain {
	return &Chain{layers: layers}
}

// Use appends a middleware as the innermost layer of the chain built so
// far, just outside the hook itself (the first Use on an empty chain
// becomes the outermost layer; each later one nests further in). Call
// order matches construction order for readability: NewChain(a, b, c)
// runs a, then b, then c, then the hook.
func (c *Chain) Use(m Middleware) *Chain {
	c.layers = append(c.layers, m)
	return c
}

// Execute runs the composed pipeline, terminating in h.Execute.
func (c *Chain) Execute(ctx context.Context, h hooks.Hook, hctx *hooks.Context) (hooks.Result, error) {
	var call Next = func(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
		return h.Execute(ctx, hctx)
	}
	for i := len(c.layers) - 1; i >= 0; i-- {
		layer := c.layers[i]
		next := call
		call = func(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
			return layer.Process(ctx, h, hctx, next)
		}
	}
	return call(ctx, hctx)
}

package hookflow

import (
	"context"

	"github.com/agentkit/hookflow/caching"
	"github.com/agentkit/hookflow/hooks"
)

// InvokeWithCache composes a caching hook with the producer it fronts,
// implementing the population contract: the hook itself only checks; on a
// miss it returns a plain continue result and the orchestrator — this
// function — invokes produce and writes the fresh result back through
// Populate. On a hit the cached result is returned verbatim and produce
// never runs.
//
// A hit is recognized by the hook returning anything other than the bare
// continue sentinel: cached results carry their stored modified_data,
// continuation flag, and error_info as-is.
func InvokeWithCache(ctx context.Context, h *caching.Hook, hctx *hooks.Context, produce func() (hooks.Result, error)) (hooks.Result, error) {
	r, err := h.Execute(ctx, hctx)
	if err != nil {
		return r, err
	}
	if r.ModifiedData != nil || r.Metrics != nil || r.ErrorInfo != nil || !r.ContinueProcessing {
		return r, nil
	}

	produced, err := produce()
	if err != nil {
		return produced, err
	}
	if perr := h.Populate(hctx, produced); perr != nil {
		// A failed write degrades to an uncached call; the produced
		// result is still the caller's answer.
		return produced, nil
	}
	return produced, nil
}

package workflow

import (
	"fmt"
	"sync"
	"time"
)

// parallelSlot is one worker's pre-allocated result/error/completion
// state, matching §4.11's work-item shape.
type parallelSlot struct {
	step    StepDefinition
	result  interface{}
	err     error
	done    bool
}

// ParallelExecutor runs an N-step batch with bounded concurrency via a
// fixed-size worker pool whose queue is guarded by a mutex+condition
// variable, per §4.11 and §5's scheduling model.
type ParallelExecutor struct {
	Seq *SequentialExecutor
}

func NewParallelExecutor(seq *SequentialExecutor) *ParallelExecutor {
	return &ParallelExecutor{Seq: seq}
}

// Execute runs step.Steps with concurrency bound min(max_concurrency ?? N, N).
// When any child declares depends_on, the children are first validated as
// a DAG and then executed level by level: each level is a batch whose
// members have all their dependencies satisfied by earlier levels. A
// failed step marks its transitive dependents skipped.
func (e *ParallelExecutor) Execute(step StepDefinition, ectx *ExecutionContext) (Result, error) {
	hasDeps := false
	for _, s := range step.Steps {
		if len(s.DependsOn) > 0 {
			hasDeps = true
			break
		}
	}
	if !hasDeps {
		return e.executeBatch(step, step.Steps, ectx)
	}

	dag := BuildDAG(step.Steps)
	if err := dag.Validate(); err != nil {
		return Result{Success: false, ErrorMessage: err.Error(), StepResults: map[string]interface{}{}}, err
	}

	byID := make(map[string]StepDefinition, len(step.Steps))
	for _, s := range step.Steps {
		byID[s.ID] = s
	}

	start := time.Now()
	agg := Result{Success: true, StepResults: map[string]interface{}{}}
	for _, level := range dag.ExecutionLevels() {
		var batch []StepDefinition
		for _, id := range level {
			if st, ok := dag.Status(id); ok && st == NodePending {
				batch = append(batch, byID[id])
			}
		}
		if len(batch) == 0 {
			continue
		}

		res, err := e.executeBatch(step, batch, ectx)
		for id, r := range res.StepResults {
			agg.StepResults[id] = r
		}
		agg.CompletedSteps += res.CompletedSteps
		for _, s := range batch {
			outcome, ok := res.StepResults[s.ID].(StepOutcome)
			if ok && outcome.Success {
				dag.MarkStatus(s.ID, NodeCompleted)
				continue
			}
			dag.MarkStatus(s.ID, NodeFailed)
			if agg.Success {
				agg.Success = false
				agg.FailedStep = s.ID
				agg.ErrorMessage = fmt.Sprintf("workflow: parallel step %s failed", s.ID)
			}
		}
		if err != nil || (!res.Success && step.FailFast) {
			break
		}
	}
	agg.ExecutionTimeMs = time.Since(start).Milliseconds()
	return agg, nil
}

// executeBatch runs one dependency-free batch through the worker pool.
func (e *ParallelExecutor) executeBatch(step StepDefinition, steps []StepDefinition, ectx *ExecutionContext) (Result, error) {
	start := time.Now()
	n := len(steps)
	slots := make([]parallelSlot, n)
	for i, s := range steps {
		slots[i] = parallelSlot{step: s}
	}

	concurrency := n
	if step.MaxConcurrency > 0 && step.MaxConcurrency < n {
		concurrency = step.MaxConcurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var mu sync.Mutex
	cond := sync.NewCond(&mu)
	queue := make([]int, n)
	for i := range queue {
		queue[i] = i
	}
	closed := false

	worker := func() {
		for {
			mu.Lock()
			for len(queue) == 0 && !closed {
				cond.Wait()
			}
			if len(queue) == 0 {
				mu.Unlock()
				return
			}
			idx := queue[0]
			queue = queue[1:]
			mu.Unlock()

			result, err := e.runOne(slots[idx].step, ectx)

			mu.Lock()
			slots[idx].result = result
			slots[idx].err = err
			slots[idx].done = true
			mu.Unlock()
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker()
		}()
	}
	mu.Lock()
	closed = true
	cond.Broadcast()
	mu.Unlock()

	timeout := step.TimeoutMs
	deadline := time.Time{}
	if timeout > 0 {
		deadline = start.Add(time.Duration(timeout) * time.Millisecond)
	}

	completed := 0
	failedStep := ""
	failFastHit := false

	for {
		mu.Lock()
		completed = 0
		for i := range slots {
			if slots[i].done {
				completed++
			}
			if step.FailFast && slots[i].done && slots[i].err != nil && !failFastHit {
				failFastHit = true
				failedStep = slots[i].step.ID
			}
		}
		allDone := completed == n
		mu.Unlock()

		if allDone {
			break
		}
		if failFastHit {
			break
		}
		if !step.WaitForAll && completed > 0 {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	results := map[string]interface{}{}
	mu.Lock()
	completed = 0
	for _, s := range slots {
		if !s.done {
			continue
		}
		completed++
		if s.err != nil {
			results[s.step.ID] = StepOutcome{Success: false, Error: s.err.Error()}
		} else {
			results[s.step.ID] = StepOutcome{Success: true, Output: s.result}
		}
	}
	mu.Unlock()

	for id, r := range results {
		ectx.SetStepResult(id, r)
	}

	if failFastHit {
		return Result{
			Success:         false,
			CompletedSteps:  completed,
			FailedStep:      failedStep,
			ErrorMessage:    fmt.Sprintf("workflow: parallel step %s failed", failedStep),
			StepResults:     results,
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	return Result{
		Success:         true,
		CompletedSteps:  completed,
		StepResults:     results,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (e *ParallelExecutor) runOne(step StepDefinition, ectx *ExecutionContext) (interface{}, error) {
	return e.Seq.child().dispatch(step, ectx)
}

// dispatchParallel is the StepParallel entry from SequentialExecutor.dispatch.
// A nested parallel step (one already running inside a pool worker) gets a
// new ParallelExecutor with its own worker goroutines and its own queue; it
// does not share the enclosing pool and does not fall back to sequential
// batching.
func dispatchParallel(e *SequentialExecutor, step StepDefinition, ectx *ExecutionContext) (interface{}, error) {
	par := NewParallelExecutor(e)
	res, err := par.Execute(step, ectx)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("workflow: parallel step %s failed at %s", step.ID, res.FailedStep)
	}
	return res.StepResults, nil
}

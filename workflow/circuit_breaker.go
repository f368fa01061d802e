package workflow

import (
	"sync"
	"time"

	"github.com/agentkit/hookflow/corerr"
)

// BreakerState is one of the three circuit breaker states per §4.13.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// CircuitBreaker is a three-state load-shedding controller. Half-open
// probes are bounded both by successes-needed (SuccessThreshold) and by
// concurrently in-flight attempts (HalfOpenMaxAttempts), the latter
// tracked via an in-flight token count, mirroring the teacher's
// ExecutionToken bookkeeping for half-open requests.
type CircuitBreaker struct {
	FailureThreshold    int
	SuccessThreshold    int
	TimeoutMs           int64
	HalfOpenMaxAttempts int

	mu               sync.Mutex
	state            BreakerState
	failureCount     int
	successCount     int
	stateChangedAt   time.Time
	halfOpenInFlight int

	now func() time.Time
}

func NewCircuitBreaker(failureThreshold, successThreshold int, timeoutMs int64, halfOpenMaxAttempts int) *CircuitBreaker {
	if halfOpenMaxAttempts <= 0 {
		halfOpenMaxAttempts = 1
	}
	return &CircuitBreaker{
		FailureThreshold:    failureThreshold,
		SuccessThreshold:    successThreshold,
		TimeoutMs:           timeoutMs,
		HalfOpenMaxAttempts: halfOpenMaxAttempts,
		state:               BreakerClosed,
		stateChangedAt:      time.Now(),
		now:                 time.Now,
	}
}

// AllowRequest reports whether a new call may proceed, transitioning
// open->half_open when TimeoutMs has elapsed. When it admits a half-open
// probe it reserves an in-flight token; callers must pair every admitted
// AllowRequest with a RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if cb.now().Sub(cb.stateChangedAt).Milliseconds() >= cb.TimeoutMs {
			cb.transition(BreakerHalfOpen)
			cb.halfOpenInFlight = 1
			return true
		}
		return false
	case BreakerHalfOpen:
		if cb.halfOpenInFlight >= cb.HalfOpenMaxAttempts {
			return false
		}
		cb.halfOpenInFlight++
		return true
	default:
		return false
	}
}

// RecordSuccess reports a successful call outcome.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		cb.failureCount = 0
	case BreakerHalfOpen:
		cb.halfOpenInFlight--
		cb.successCount++
		if cb.successCount >= cb.SuccessThreshold {
			cb.transition(BreakerClosed)
		}
	}
}

// RecordFailure reports a failed call outcome.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		cb.failureCount++
		if cb.failureCount >= cb.FailureThreshold {
			cb.transition(BreakerOpen)
		}
	case BreakerHalfOpen:
		cb.halfOpenInFlight--
		cb.transition(BreakerOpen)
	}
}

func (cb *CircuitBreaker) transition(to BreakerState) {
	cb.state = to
	cb.stateChangedAt = cb.now()
	cb.failureCount = 0
	cb.successCount = 0
	if to != BreakerHalfOpen {
		cb.halfOpenInFlight = 0
	}
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Guard wraps fn with the breaker: denies immediately with
// ErrCircuitBreakerOpen when the breaker is not admitting requests,
// otherwise runs fn and records the outcome.
func (cb *CircuitBreaker) Guard(fn func() error) error {
	if !cb.AllowRequest() {
		return corerr.New("CircuitBreaker.Guard", corerr.ErrCircuitBreakerOpen, "", "circuit breaker is open")
	}
	err := fn()
	if err != nil {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return nil
}

package transport

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without contacting the server while the
// breaker is open.
var ErrCircuitOpen = errors.New("transport: circuit breaker is open")

// BreakerState is the state of a CircuitBreaker.
type BreakerState int

const (
	// BreakerClosed lets requests through.
	BreakerClosed BreakerState = iota
	// BreakerOpen fails requests fast.
	BreakerOpen
	// BreakerHalfOpen lets a probe request through.
	BreakerHalfOpen
)

// String returns the string representation of the state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "Closed"
	case BreakerOpen:
		return "Open"
	case BreakerHalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

// BreakerPolicy configures a CircuitBreaker.
type BreakerPolicy struct {
	// FailureThreshold is the number of consecutive failures that opens the
	// circuit.
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open before a probe.
	ResetTimeout time.Duration

	// OnStateChange is called (in its own goroutine) on every transition.
	OnStateChange func(from, to BreakerState)
}

// DefaultBreakerPolicy returns a policy that opens after five failures and
// probes again after 30 seconds.
func DefaultBreakerPolicy() BreakerPolicy {
	return BreakerPolicy{FailureThreshold: 5, ResetTimeout: 30 * time.Second}
}

// CircuitBreaker stops sending requests to an endpoint after repeated
// transport failures. It never retries; a tripped breaker only shortens the
// time to failure.
type CircuitBreaker struct {
	mu sync.Mutex

	state       BreakerState
	failures    int
	lastFailure time.Time

	threshold     int
	timeout       time.Duration
	onStateChange func(from, to BreakerState)

	now func() time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(policy BreakerPolicy) *CircuitBreaker {
	if policy.FailureThreshold <= 0 {
		policy.FailureThreshold = 1
	}
	return &CircuitBreaker{
		state:         BreakerClosed,
		threshold:     policy.FailureThreshold,
		timeout:       policy.ResetTimeout,
		onStateChange: policy.OnStateChange,
		now:           time.Now,
	}
}

// Allow returns ErrCircuitOpen while the breaker is open. After the reset
// timeout it moves to half-open and admits the call.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == BreakerOpen {
		if cb.now().Sub(cb.lastFailure) < cb.timeout {
			return ErrCircuitOpen
		}
		cb.transitionLocked(BreakerHalfOpen)
	}
	return nil
}

// Record feeds the outcome of an admitted call into the breaker.
func (cb *CircuitBreaker) Record(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !failed {
		cb.failures = 0
		if cb.state == BreakerHalfOpen {
			cb.transitionLocked(BreakerClosed)
		}
		return
	}

	cb.failures++
	cb.lastFailure = cb.now()

	switch {
	case cb.state == BreakerHalfOpen:
		cb.transitionLocked(BreakerOpen)
	case cb.state == BreakerClosed && cb.failures >= cb.threshold:
		cb.transitionLocked(BreakerOpen)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// transitionLocked must be called with cb.mu held.
func (cb *CircuitBreaker) transitionLocked(to BreakerState) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	if cb.onStateChange != nil {
		go cb.onStateChange(from, to)
	}
}

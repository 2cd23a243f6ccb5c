// Package circuitbreaker stops requests to a failing upstream node until it
// has had time to recover.
package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrOpen is returned by Allow while the circuit is open
var ErrOpen = errors.New("circuit breaker open: upstream protection engaged")

// State represents the current state of the circuit breaker
type State int

// Circuit breaker states
const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Tripped, no new requests allowed
	StateHalfOpen              // Probing whether the upstream has recovered
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker trips after a run of consecutive failures
type CircuitBreaker struct {
	// Consecutive failures that open the circuit
	failureThreshold int

	// Current state of the circuit breaker (Closed, Open, HalfOpen)
	state State

	// Timestamp of the last circuit trip
	lastTrip time.Time

	// Duration before auto-reset attempt
	resetDelay time.Duration

	mu sync.RWMutex

	failures int

	// Count of consecutive successful requests in HalfOpen state
	successCount int

	// Requests admitted in HalfOpen state still awaiting an outcome
	trials int

	// Number of successful requests required to close circuit
	successThreshold int

	// Event callback for monitoring/alerting
	onTripCallback func(reason string)

	// Called on every state change
	onStateChange func(State)

	now func() time.Time
}

// New creates a CircuitBreaker that opens after failureThreshold consecutive
// failures
func New(failureThreshold int) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		state:            StateClosed,
		resetDelay:       time.Minute,
		successThreshold: 1,
		now:              time.Now,
	}
}

// WithResetDelay sets a custom reset delay and returns the circuit breaker
func (cb *CircuitBreaker) WithResetDelay(delay time.Duration) *CircuitBreaker {
	cb.resetDelay = delay
	return cb
}

// WithSuccessThreshold sets the number of successful requests needed to close the circuit
func (cb *CircuitBreaker) WithSuccessThreshold(threshold int) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	cb.successThreshold = threshold
	return cb
}

// WithTripCallback sets a callback function that is called when the circuit trips
func (cb *CircuitBreaker) WithTripCallback(callback func(reason string)) *CircuitBreaker {
	cb.onTripCallback = callback
	return cb
}

// WithStateCallback sets a callback invoked synchronously on state changes
func (cb *CircuitBreaker) WithStateCallback(callback func(State)) *CircuitBreaker {
	cb.onStateChange = callback
	return cb
}

// Allow reports whether a request may proceed. An open circuit moves to
// half-open once the reset delay has elapsed; half-open admits at most
// successThreshold requests at a time. Every admitted request must end with
// RecordSuccess, RecordFailure or Release.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateHalfOpen:
		if cb.trials >= cb.successThreshold {
			return ErrOpen
		}
		cb.trials++
		return nil
	}

	if cb.now().Sub(cb.lastTrip) <= cb.resetDelay {
		return ErrOpen
	}

	cb.setState(StateHalfOpen)
	cb.successCount = 0
	cb.trials = 1
	logrus.Info("Circuit breaker half-open: testing upstream recovery")
	return nil
}

// Release ends an admitted request that produced no upstream outcome, such
// as one cancelled before it was sent
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.releaseTrial()
}

func (cb *CircuitBreaker) releaseTrial() {
	if cb.trials > 0 {
		cb.trials--
	}
}

// RecordSuccess registers a successful request
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.releaseTrial()
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.setState(StateClosed)
			cb.successCount = 0
			cb.trials = 0
			logrus.Info("Circuit breaker closed: upstream has recovered")
		}
	}
}

// RecordFailure registers a failed request and trips the circuit when the
// threshold is reached. Any failure while half-open trips immediately.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	switch {
	case cb.state == StateHalfOpen:
		cb.trip(fmt.Sprintf("trial request failed: %v", err))
	case cb.state == StateClosed && cb.failures >= cb.failureThreshold:
		cb.trip(fmt.Sprintf("%d consecutive failures, last: %v", cb.failures, err))
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset forcibly resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed)
	cb.failures = 0
	cb.successCount = 0
	cb.trials = 0
	logrus.Info("Circuit breaker manually reset to closed state")
}

// trip sets the circuit breaker to open state with the current time
func (cb *CircuitBreaker) trip(reason string) {
	cb.setState(StateOpen)
	cb.lastTrip = cb.now()
	cb.successCount = 0
	cb.trials = 0
	logrus.Warnf("Circuit breaker tripped: %s", reason)

	if cb.onTripCallback != nil {
		go cb.onTripCallback(reason)
	}
}

func (cb *CircuitBreaker) setState(s State) {
	if cb.state == s {
		return
	}
	cb.state = s
	if cb.onStateChange != nil {
		cb.onStateChange(s)
	}
}

package ai

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed lets every call through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects calls until the cooldown elapses.
	CircuitOpen
	// CircuitHalfOpen lets a single probe through.
	CircuitHalfOpen
)

// String returns a string representation of the circuit state
func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker opens after failureThreshold consecutive failures and stays
// open for cooldown. After the cooldown one probe is let through: success
// closes the circuit, failure reopens it.
//
// Every state change starts a new generation. Allow hands out the current
// generation and outcomes reported for an older one are ignored, so a slow
// call admitted before the circuit opened cannot close it or free the probe.
type CircuitBreaker struct {
	mu               sync.Mutex
	name             string
	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time

	state        CircuitState
	generation   uint64
	failures     int
	openedAt     time.Time
	probeRunning bool
}

// NewCircuitBreaker creates a breaker for the named provider. Non-positive
// settings fall back to 5 failures and a 60s cooldown.
func NewCircuitBreaker(name string, failureThreshold int, cooldown time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &CircuitBreaker{
		name:             name,
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed, returning ErrCircuitOpen if not.
// An allowed caller must pass the returned generation to Record or Release.
func (cb *CircuitBreaker) Allow() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return 0, ErrCircuitOpen
		}
		cb.setState(CircuitHalfOpen)
		cb.probeRunning = true
		slog.Info("circuit breaker half-open", slog.String("provider", cb.name))
		return cb.generation, nil
	case CircuitHalfOpen:
		if cb.probeRunning {
			return 0, ErrCircuitOpen
		}
		cb.probeRunning = true
		return cb.generation, nil
	default:
		return cb.generation, nil
	}
}

// Record reports the outcome of a call allowed in generation gen.
func (cb *CircuitBreaker) Record(gen uint64, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if gen != cb.generation {
		return
	}
	if err == nil {
		cb.failures = 0
		if cb.state != CircuitClosed {
			cb.setState(CircuitClosed)
			slog.Info("circuit breaker closed", slog.String("provider", cb.name))
		}
		return
	}

	cb.failures++
	if cb.state == CircuitHalfOpen || cb.failures >= cb.failureThreshold {
		cb.setState(CircuitOpen)
		cb.openedAt = cb.now()
		slog.Warn("circuit breaker opened",
			slog.String("provider", cb.name),
			slog.Int("consecutive_failures", cb.failures),
			slog.Duration("cooldown", cb.cooldown))
	}
}

// Release gives back a call allowed in generation gen that never reached the
// provider.
func (cb *CircuitBreaker) Release(gen uint64) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if gen == cb.generation {
		cb.probeRunning = false
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) setState(s CircuitState) {
	cb.state = s
	cb.generation++
	cb.probeRunning = false
}

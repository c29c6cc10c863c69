// Package resilience wraps outbound HTTP clients (to the LLM service and
// the search service) with a circuit breaker and a rate limiter, so a
// failing or throttled provider degrades to the spec's local-fallback
// paths instead of burning the wall-clock budget on doomed retries.
// Adapted from the teacher's internal/circuitbreaker package (first-party
// code, not a third-party module, so it is re-expressed here rather than
// imported) plus golang.org/x/time/rate for the token-bucket concern the
// teacher hand-rolled in internal/ratecontrol.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is one of the three circuit breaker states.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

var (
	ErrCircuitOpen     = errors.New("resilience: circuit breaker is open")
	ErrTooManyInFlight = errors.New("resilience: too many requests in half-open state")
)

// Config tunes breaker sensitivity.
type Config struct {
	MaxHalfOpenRequests uint32
	ClosedWindow        time.Duration
	OpenTimeout         time.Duration
	FailureThreshold    uint32
	SuccessThreshold    uint32
}

// DefaultConfig matches the teacher's internal/circuitbreaker defaults.
func DefaultConfig() Config {
	return Config{
		MaxHalfOpenRequests: 3,
		ClosedWindow:        60 * time.Second,
		OpenTimeout:         10 * time.Second,
		FailureThreshold:    5,
		SuccessThreshold:    2,
	}
}

type counts struct {
	requests             uint32
	consecutiveSuccesses uint32
	consecutiveFailures  uint32
}

// CircuitBreaker is a closed/open/half-open state machine guarding calls to
// one external dependency (one LLM provider, one search provider).
type CircuitBreaker struct {
	name   string
	cfg    Config
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	counts     counts
	expiry     time.Time
}

// New creates a circuit breaker named name (used in logs/metrics).
func New(name string, cfg Config, logger *zap.Logger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		name:   name,
		cfg:    cfg,
		logger: logger,
		state:  StateClosed,
		expiry: time.Now().Add(cfg.ClosedWindow),
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	state, _ := cb.currentStateLocked(time.Now())
	return state
}

// Execute runs fn if the breaker permits it, recording the outcome.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			cb.afterRequest(generation, false)
			panic(r)
		}
	}()
	err = fn()
	cb.afterRequest(generation, err == nil)
	return err
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	now := time.Now()
	state, generation := cb.currentStateLocked(now)
	switch state {
	case StateOpen:
		return generation, ErrCircuitOpen
	case StateHalfOpen:
		if cb.counts.requests >= cb.cfg.MaxHalfOpenRequests {
			return generation, ErrTooManyInFlight
		}
	}
	cb.counts.requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	now := time.Now()
	state, generation := cb.currentStateLocked(now)
	if generation != before {
		return
	}
	if success {
		cb.onSuccessLocked(state, now)
	} else {
		cb.onFailureLocked(state, now)
	}
}

func (cb *CircuitBreaker) currentStateLocked(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.toNewGenerationLocked(now)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setStateLocked(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) onSuccessLocked(state State, now time.Time) {
	switch state {
	case StateClosed:
		cb.counts.consecutiveFailures = 0
	case StateHalfOpen:
		cb.counts.consecutiveSuccesses++
		if cb.counts.consecutiveSuccesses >= cb.cfg.SuccessThreshold {
			cb.setStateLocked(StateClosed, now)
		}
	}
}

func (cb *CircuitBreaker) onFailureLocked(state State, now time.Time) {
	switch state {
	case StateClosed:
		cb.counts.consecutiveFailures++
		if cb.counts.consecutiveFailures >= cb.cfg.FailureThreshold {
			cb.setStateLocked(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setStateLocked(StateOpen, now)
	}
}

func (cb *CircuitBreaker) setStateLocked(state State, now time.Time) {
	if cb.state == state {
		return
	}
	prev := cb.state
	cb.state = state
	cb.toNewGenerationLocked(now)
	cb.logger.Info("circuit breaker state changed",
		zap.String("name", cb.name), zap.String("from", prev.String()), zap.String("to", state.String()))
}

func (cb *CircuitBreaker) toNewGenerationLocked(now time.Time) {
	cb.generation++
	cb.counts = counts{}
	var zero time.Time
	switch cb.state {
	case StateClosed:
		if cb.cfg.ClosedWindow == 0 {
			cb.expiry = zero
		} else {
			cb.expiry = now.Add(cb.cfg.ClosedWindow)
		}
	case StateOpen:
		cb.expiry = now.Add(cb.cfg.OpenTimeout)
	default:
		cb.expiry = zero
	}
}

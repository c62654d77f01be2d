package source

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned while a source is failing fast.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerState represents the current state of a circuit breaker.
type BreakerState int

const (
	// BreakerClosed allows all requests through. Failures are counted.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects all requests immediately.
	BreakerOpen
	// BreakerHalfOpen lets probe requests through.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker stops calling a Remote Data Source after consecutive
// infrastructure failures. It never retries: while open, fetches fail with
// a transport error until the cooldown elapses and a probe succeeds.
// It is safe for concurrent use.
type Breaker struct {
	mu               sync.Mutex
	state            BreakerState
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	openedAt         time.Time

	now      func() time.Time
	onChange func(BreakerState)
}

// NewBreaker creates a breaker that opens after failureThreshold
// consecutive failures and closes after successThreshold consecutive
// successful probes. Non-positive values select 5, 2 and 30s.
func NewBreaker(failureThreshold, successThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 5
	}
	if successThreshold < 1 {
		successThreshold = 2
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		state:            BreakerClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
		now:              time.Now,
	}
}

// OnStateChange registers f to be called after every state transition.
// f runs with the breaker locked.
func (b *Breaker) OnStateChange(f func(BreakerState)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = f
}

// Allow returns ErrBreakerOpen if requests should not be sent.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refreshLocked() == BreakerOpen {
		return ErrBreakerOpen
	}
	return nil
}

// RecordSuccess records a request that reached the source and was served.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.refreshLocked() {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.failures = 0
			b.successes = 0
			b.setLocked(BreakerClosed)
		}
	}
}

// RecordFailure records a transport failure or a 5xx response.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.refreshLocked() {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.openLocked()
		}
	case BreakerHalfOpen:
		b.openLocked()
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshLocked()
}

func (b *Breaker) openLocked() {
	b.openedAt = b.now()
	b.successes = 0
	b.setLocked(BreakerOpen)
}

// refreshLocked moves an expired open breaker to half-open.
func (b *Breaker) refreshLocked() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		b.successes = 0
		b.setLocked(BreakerHalfOpen)
	}
	return b.state
}

func (b *Breaker) setLocked(s BreakerState) {
	if b.state == s {
		return
	}
	b.state = s
	if b.onChange != nil {
		b.onChange(s)
	}
}

// Package circuitbreaker protects the REST dispatcher from hammering
// a venue that is failing at the transport level.
package circuitbreaker

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

type Config struct {
	// FailThreshold is the number of consecutive failures that opens
	// the breaker.
	FailThreshold int `json:"fail_threshold"`
	// SuccessThreshold is the number of half-open successes that
	// close it again.
	SuccessThreshold int `json:"success_threshold"`
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `json:"timeout"`
}

type Breaker struct {
	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	lastFailTime time.Time
	cfg          Config
}

func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg}
}

// Allow reports whether a call may proceed. An open breaker admits a
// probe once the timeout has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if time.Since(b.lastFailTime) >= b.cfg.Timeout {
			b.state = StateHalfOpen
			b.successes = 0
			return true
		}
		return false
	}
	return false
}

// Record feeds the outcome of one call into the breaker.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		switch b.state {
		case StateClosed:
			b.failures = 0
		case StateHalfOpen:
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.state = StateClosed
				b.failures = 0
				b.successes = 0
			}
		}
		return
	}

	b.lastFailTime = time.Now()
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailThreshold {
			b.state = StateOpen
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.successes = 0
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}

package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

type BreakerConfig struct {
	MaxFailures      int           `json:"max_failures"`
	Timeout          time.Duration `json:"timeout"`
	HalfOpenMaxCalls int           `json:"half_open_max_calls"`
}

func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// Breaker stops calling a failing backend for Timeout after MaxFailures
// consecutive failures, then lets HalfOpenMaxCalls trial calls through.
// A trial failure reopens it; HalfOpenMaxCalls trial successes close it.
type Breaker struct {
	mu              sync.Mutex
	state           BreakerState
	failureCount    int
	successCount    int
	inFlight        int
	lastFailureTime time.Time

	maxFailures      int
	timeout          time.Duration
	halfOpenMaxCalls int

	now func() time.Time
}

func NewBreaker(config *BreakerConfig) *Breaker {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	halfOpen := config.HalfOpenMaxCalls
	if halfOpen <= 0 {
		halfOpen = 1
	}
	maxFailures := config.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 1
	}

	return &Breaker{
		state:            BreakerClosed,
		maxFailures:      maxFailures,
		timeout:          config.Timeout,
		halfOpenMaxCalls: halfOpen,
		now:              time.Now,
	}
}

// Execute runs fn unless the breaker is open. Errors for which countable
// returns false pass through without affecting the breaker.
func (b *Breaker) Execute(fn func() error, countable func(error) bool) error {
	if !b.allow() {
		return ErrCircuitOpen
	}

	err := fn()
	switch {
	case err == nil:
		b.recordSuccess()
	case countable == nil || countable(err):
		b.recordFailure()
	default:
		b.release()
	}
	return err
}

// release gives back a half-open trial slot for a call that told nothing
// about the backend.
func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen && b.inFlight > 0 {
		b.inFlight--
	}
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if b.now().Sub(b.lastFailureTime) < b.timeout {
			return false
		}
		b.state = BreakerHalfOpen
		b.successCount = 0
		b.inFlight = 0
		fallthrough
	case BreakerHalfOpen:
		if b.inFlight >= b.halfOpenMaxCalls {
			return false
		}
		b.inFlight++
		return true
	default:
		return false
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureTime = b.now()

	switch b.state {
	case BreakerClosed:
		if b.failureCount >= b.maxFailures {
			b.state = BreakerOpen
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.successCount = 0
		b.inFlight = 0
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failureCount = 0
	case BreakerHalfOpen:
		b.successCount++
		if b.inFlight > 0 {
			b.inFlight--
		}
		if b.successCount >= b.halfOpenMaxCalls {
			b.state = BreakerClosed
			b.failureCount = 0
			b.successCount = 0
			b.inFlight = 0
		}
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"state":           b.state.String(),
		"failure_count":   b.failureCount,
		"success_count":   b.successCount,
		"last_failure":    b.lastFailureTime.Unix(),
		"max_failures":    b.maxFailures,
		"timeout_seconds": b.timeout.Seconds(),
	}
}

// BreakerStore guards a remote store with a Breaker. A missing key is a
// normal answer and does not count as a failure.
type BreakerStore struct {
	next    KeyValueStore
	breaker *Breaker
}

func NewBreakerStore(next KeyValueStore, config *BreakerConfig) *BreakerStore {
	return &BreakerStore{next: next, breaker: NewBreaker(config)}
}

func isFailure(err error) bool {
	return !errors.Is(err, ErrNotFound) && !errors.Is(err, context.Canceled)
}

func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.breaker.Execute(func() error {
		var err error
		value, err = s.next.Get(ctx, key)
		return err
	}, isFailure)
	return value, err
}

func (s *BreakerStore) Set(ctx context.Context, key string, value []byte) error {
	return s.breaker.Execute(func() error {
		return s.next.Set(ctx, key, value)
	}, isFailure)
}

// Health asks the backend directly so readiness reflects recovery even
// while the breaker is still open.
func (s *BreakerStore) Health(ctx context.Context) error {
	return s.next.Health(ctx)
}

func (s *BreakerStore) Breaker() *Breaker {
	return s.breaker
}

func (s *BreakerStore) Close() error {
	return s.next.Close()
}

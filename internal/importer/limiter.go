package importer

// limiter.go bounds how many import batches run at once.
//
// Rows inside a batch are sequential, so the unit of concurrency here is the
// whole batch: each one holds a reference snapshot and a database session for
// its lifetime, and an unbounded number of simultaneous batches would exhaust
// the pool. A buffered channel serves as the semaphore; a caller that cannot
// take a slot within maxWait is turned away with ErrTooManyImports so the
// HTTP layer can answer with backpressure instead of queueing forever.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyImports means every batch slot was taken for the whole wait
// window. The request can simply be retried once a running batch finishes.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// DefaultMaxConcurrentImports bounds parallel batches when the configuration
// does not say otherwise.
const DefaultMaxConcurrentImports = 5

// DefaultMaxWaitTime is the slot wait window when none is configured.
const DefaultMaxWaitTime = 30 * time.Second

// Limiter is the batch semaphore. The active counter exists alongside the
// channel so Status and WaitForDrain can observe the limiter without
// consuming slots.
type Limiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLimiter builds a limiter for maxConcurrent simultaneous batches with the
// given slot wait window. Non-positive arguments fall back to the defaults.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a batch slot, waiting up to the configured window. A caller
// whose own context ends while waiting gets that context's error, not
// ErrTooManyImports. Every successful Acquire must be paired with Release,
// normally via defer.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// waitCtx inherits from ctx, so this fires for both caller
		// cancellation and slot timeout; ctx.Err() tells them apart.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyImports
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *Limiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release returns a slot. Exactly one Release per successful
// Acquire/TryAcquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns how many batches hold a slot right now.
func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot capacity.
func (l *Limiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns how many slots are free.
func (l *Limiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no batch holds a slot or the context ends.
// Shutdown uses it so in-flight batches finish before the server stops.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// LimiterStatus is a point-in-time view of the limiter, exposed for the
// shutdown log and monitoring.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status snapshots the limiter.
func (l *Limiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}

// Package ratelimit enforces an advisory per-provider request budget so the
// aggregator doesn't trip upstream throttling. Budgets are fixed per-minute
// buckets, not a true sliding window.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// ErrBudgetExhausted is returned when a provider's per-minute budget is spent.
type ErrBudgetExhausted struct {
	Provider string
	ResetAt  time.Time
}

func (e *ErrBudgetExhausted) Error() string {
	return fmt.Sprintf("rate limit exhausted for %s, resets at %s", e.Provider, e.ResetAt.Format(time.RFC3339))
}

type bucket struct {
	limit   int
	count   int
	resetAt time.Time
}

// Limiter tracks one bucket per provider. All methods are safe for concurrent
// use: provider branches of a single search run on separate goroutines.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	now func() time.Time
}

const window = time.Minute

func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// SetBudget registers the per-minute budget for a provider. A limit <= 0
// means unlimited.
func (l *Limiter) SetBudget(provider string, perMinute int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[provider] = &bucket{limit: perMinute, resetAt: l.now().Add(window)}
}

// Allow checks the budget and consumes one request in a single step. Checking
// and consuming separately would let two concurrent searches race past the
// same budget check.
func (l *Limiter) Allow(provider string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucket(provider)
	if b.limit <= 0 {
		return nil
	}
	if b.count >= b.limit {
		return &ErrBudgetExhausted{Provider: provider, ResetAt: b.resetAt}
	}
	b.count++
	return nil
}

// Check reports whether a request would currently be allowed, without
// consuming budget.
func (l *Limiter) Check(provider string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucket(provider)
	return b.limit <= 0 || b.count < b.limit
}

// Remaining reports how many requests are left in the current window.
// Unlimited providers report -1.
func (l *Limiter) Remaining(provider string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucket(provider)
	if b.limit <= 0 {
		return -1
	}
	return b.limit - b.count
}

// bucket returns the provider's bucket, resetting it if its window elapsed.
// Callers must hold l.mu.
func (l *Limiter) bucket(provider string) *bucket {
	b, ok := l.buckets[provider]
	if !ok {
		b = &bucket{limit: 0, resetAt: l.now().Add(window)}
		l.buckets[provider] = b
	}
	if l.now().After(b.resetAt) {
		b.count = 0
		b.resetAt = l.now().Add(window)
	}
	return b
}

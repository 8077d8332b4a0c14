// Package ratelimit gates outgoing REST calls with one token bucket
// per rate category.
package ratelimit

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"garuda/pkg/core"
)

// Limiter holds one token bucket per category. Buckets refill lazily
// from elapsed time; acquisitions in different categories never block
// each other.
type Limiter struct {
	buckets map[core.RateCategory]*rate.Limiter
	metrics *Metrics
}

// Metrics tracks acquisition statistics.
type Metrics struct {
	acquired atomic.Int64
	delayed  atomic.Int64
}

// New creates a Limiter from per-category budgets. Categories missing
// from the map fall back to the info bucket.
func New(budgets map[core.RateCategory]core.RateBudget) *Limiter {
	buckets := make(map[core.RateCategory]*rate.Limiter, len(budgets))
	for category, budget := range budgets {
		rps := float64(budget.Capacity) / budget.RefillInterval.Seconds()
		buckets[category] = rate.NewLimiter(rate.Limit(rps), budget.Capacity)
	}
	return &Limiter{
		buckets: buckets,
		metrics: &Metrics{},
	}
}

func (l *Limiter) bucket(category core.RateCategory) *rate.Limiter {
	if b, ok := l.buckets[category]; ok {
		return b
	}
	return l.buckets[core.RateInfo]
}

// Acquire consumes one token from the category's bucket if available
// and returns zero. Otherwise it consumes nothing and returns the
// duration until the next token.
func (l *Limiter) Acquire(category core.RateCategory) time.Duration {
	b := l.bucket(category)
	if b == nil {
		return 0
	}
	r := b.Reserve()
	delay := r.Delay()
	if delay > 0 {
		r.Cancel()
		l.metrics.delayed.Add(1)
		return delay
	}
	l.metrics.acquired.Add(1)
	return 0
}

// Wait blocks until a token for the category is consumed or the
// context is cancelled. The dispatcher uses the blocking form to keep
// retries ordered.
func (l *Limiter) Wait(ctx context.Context, category core.RateCategory) error {
	b := l.bucket(category)
	if b == nil {
		return nil
	}
	if err := b.Wait(ctx); err != nil {
		return err
	}
	l.metrics.acquired.Add(1)
	return nil
}

// Metrics returns a snapshot of acquisition statistics.
func (l *Limiter) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		Acquired: l.metrics.acquired.Load(),
		Delayed:  l.metrics.delayed.Load(),
	}
}

// MetricsSnapshot is a point-in-time capture of limiter statistics.
type MetricsSnapshot struct {
	// Acquired is the number of tokens consumed.
	Acquired int64
	// Delayed is the number of acquisitions that found an empty bucket.
	Delayed int64
}

// CategoryForPath derives the rate category from a REST path: order
// and trade endpoints share the trading budget, account and position
// endpoints the account budget, everything else the market-data one.
func CategoryForPath(path string) core.RateCategory {
	switch {
	case strings.Contains(path, "/trade/") || strings.Contains(path, "/order/"):
		return core.RateTrade
	case strings.Contains(path, "/account/") || strings.Contains(path, "/position/"):
		return core.RateAccount
	default:
		return core.RateInfo
	}
}

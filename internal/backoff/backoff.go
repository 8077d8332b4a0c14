// Package backoff provides the single retry-delay function shared by
// REST retries and the stream reconnect loop.
package backoff

import (
	"math/rand"
	"time"
)

// Delay returns the wait before the given zero-based attempt: base
// doubled per attempt, capped at max, with ±20% jitter.
func Delay(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	d := base * time.Duration(1<<uint(attempt))
	if max > 0 && d > max {
		d = max
	}

	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * jitter)
}

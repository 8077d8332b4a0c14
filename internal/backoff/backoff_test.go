package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelay_GrowsExponentially(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Hour

	for attempt := 0; attempt < 5; attempt++ {
		d := Delay(attempt, base, max)
		want := base * time.Duration(1<<uint(attempt))

		// Jitter keeps the delay within ±20% of the exponential value.
		assert.GreaterOrEqual(t, d, time.Duration(float64(want)*0.8), "attempt %d", attempt)
		assert.LessOrEqual(t, d, time.Duration(float64(want)*1.2), "attempt %d", attempt)
	}
}

func TestDelay_CappedAtMax(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second

	d := Delay(10, base, max)

	assert.LessOrEqual(t, d, time.Duration(float64(max)*1.2))
}

func TestDelay_LargeAttemptDoesNotOverflow(t *testing.T) {
	d := Delay(1000, time.Second, 30*time.Second)

	assert.Greater(t, d, time.Duration(0))
	assert.LessOrEqual(t, d, time.Duration(float64(30*time.Second)*1.2))
}

func TestDelay_ZeroBase(t *testing.T) {
	assert.Equal(t, time.Duration(0), Delay(3, 0, time.Second))
}

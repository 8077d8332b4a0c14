package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"garuda/pkg/core"
)

func tickerSub(instID string) core.Subscription {
	return core.Subscription{InstType: core.InstTypeSpot, Channel: "ticker", InstID: instID}
}

func TestRegistry_AddIsIdempotent(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Add(tickerSub("BTCUSDT")))
	assert.False(t, r.Add(tickerSub("BTCUSDT")), "re-adding must not change the set")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()

	r.Add(tickerSub("BTCUSDT"))
	assert.True(t, r.Remove(tickerSub("BTCUSDT")))
	assert.False(t, r.Remove(tickerSub("BTCUSDT")))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Contains(t *testing.T) {
	r := NewRegistry()

	r.Add(tickerSub("BTCUSDT"))
	assert.True(t, r.Contains(tickerSub("BTCUSDT")))
	assert.False(t, r.Contains(tickerSub("ETHUSDT")))
}

func TestRegistry_IdentityTriple(t *testing.T) {
	r := NewRegistry()

	// Same channel on different instruments are distinct subscriptions.
	assert.True(t, r.Add(tickerSub("BTCUSDT")))
	assert.True(t, r.Add(tickerSub("ETHUSDT")))
	// Same instrument on a different market type is distinct too.
	assert.True(t, r.Add(core.Subscription{
		InstType: core.InstTypeUSDTFutures,
		Channel:  "ticker",
		InstID:   "BTCUSDT",
	}))

	assert.Equal(t, 3, r.Len())
}

func TestRegistry_ActiveForVisibility(t *testing.T) {
	r := NewRegistry()

	r.Add(tickerSub("BTCUSDT"))
	r.Add(core.Subscription{
		InstType: core.InstTypeSpot,
		Channel:  "account",
		Coin:     "default",
		Private:  true,
	})

	public := r.ActiveFor(false)
	assert.Len(t, public, 1)
	assert.Equal(t, "ticker", public[0].Channel)

	private := r.ActiveFor(true)
	assert.Len(t, private, 1)
	assert.Equal(t, "account", private[0].Channel)
}

func TestRegistry_ActiveForDeterministicOrder(t *testing.T) {
	r := NewRegistry()

	r.Add(tickerSub("ETHUSDT"))
	r.Add(tickerSub("BTCUSDT"))
	r.Add(tickerSub("ADAUSDT"))

	first := r.ActiveFor(false)
	second := r.ActiveFor(false)

	assert.Equal(t, first, second)
	assert.Equal(t, "ADAUSDT", first[0].InstID)
}

package core

// InstType identifies the market a channel belongs to.
type InstType string

// Market type identifiers used in subscription arguments.
const (
	InstTypeSpot        InstType = "SPOT"
	InstTypeUSDTFutures InstType = "USDT-FUTURES"
	InstTypeCoinFutures InstType = "COIN-FUTURES"
)

// Subscription identifies one desired channel stream. Identity is the
// (InstType, Channel, InstID/Coin) triple; the registry keeps set
// semantics over it. The struct doubles as the wire argument of
// subscribe, unsubscribe and routing frames.
type Subscription struct {
	// InstType is the market type (SPOT, USDT-FUTURES, ...).
	InstType InstType `json:"instType"`
	// Channel is the stream name (ticker, books, trade, candle,
	// orders, account, positions, fill).
	Channel string `json:"channel"`
	// InstID is the instrument identifier, empty for account-level
	// channels.
	InstID string `json:"instId,omitempty"`
	// Coin selects a currency on the account channel; "default"
	// subscribes to all.
	Coin string `json:"coin,omitempty"`
	// Private channels require a logged-in session. Not transmitted.
	Private bool `json:"-"`
}

// Key returns the identity triple as a map key.
func (s Subscription) Key() string {
	id := s.InstID
	if id == "" {
		id = s.Coin
	}
	return string(s.InstType) + "/" + s.Channel + "/" + id
}

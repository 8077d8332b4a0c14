package stream

import (
	"encoding/json"
	"strings"

	"garuda/pkg/core"
)

// opFrame is the outbound control frame shape shared by subscribe,
// unsubscribe, ping and login.
type opFrame struct {
	Op   string `json:"op"`
	Args any    `json:"args,omitempty"`
}

// loginArgs carries the signed identity of the login frame.
type loginArgs struct {
	APIKey     string `json:"apiKey"`
	Passphrase string `json:"passphrase"`
	Timestamp  string `json:"timestamp"`
	Sign       string `json:"sign"`
}

// wireFrame is the superset of every inbound frame. A frame carrying
// Event is a control message; a frame carrying Action is channel data.
type wireFrame struct {
	Event  string            `json:"event,omitempty"`
	Code   json.RawMessage   `json:"code,omitempty"`
	Msg    string            `json:"msg,omitempty"`
	Action string            `json:"action,omitempty"`
	Arg    core.Subscription `json:"arg,omitempty"`
	Data   json.RawMessage   `json:"data,omitempty"`
	Ts     int64             `json:"ts,omitempty"`
}

// codeString normalizes the venue code field, which arrives as a bare
// number on login acks and as a string elsewhere.
func (f *wireFrame) codeString() string {
	return strings.Trim(string(f.Code), `"`)
}

// loginOK reports whether a login acknowledgment carries a success
// code. The venue uses "0" on the stream where REST uses "00000".
func (f *wireFrame) loginOK() bool {
	code := f.codeString()
	return code == "0" || code == core.CodeOK
}

// Event is one decoded data frame delivered to a channel handler.
type Event struct {
	// Action distinguishes full snapshots from incremental updates.
	Action string
	// Arg identifies the channel the data belongs to.
	Arg core.Subscription
	// Data is the raw payload array, left to the caller to decode.
	Data json.RawMessage
	// Ts is the venue timestamp in milliseconds.
	Ts int64
}

// Handler consumes decoded data frames for one subscription. Handlers
// run on the session's delivery goroutine in arrival order.
type Handler func(Event)

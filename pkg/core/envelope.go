package core

import "encoding/json"

// CodeOK is the sole success sentinel. Every response whose code
// differs is an application error regardless of HTTP status.
const CodeOK = "00000"

// Envelope is the uniform wrapper around every REST response.
type Envelope struct {
	// Code is the venue result code; "00000" means success.
	Code string `json:"code"`
	// Msg is the human-readable result message.
	Msg string `json:"msg"`
	// RequestTime is the server-side timestamp in milliseconds.
	RequestTime int64 `json:"requestTime"`
	// Data carries the endpoint payload, left raw for the caller.
	Data json.RawMessage `json:"data"`
}

// IsSuccess reports whether the envelope carries a successful result.
func (e *Envelope) IsSuccess() bool {
	return e.Code == CodeOK
}

package stream

import "sync/atomic"

// SessionState represents the lifecycle state of a stream session.
type SessionState int32

// Session lifecycle states.
const (
	// StateDisconnected indicates no connection exists.
	StateDisconnected SessionState = iota
	// StateConnecting indicates a transport connect is in progress.
	StateConnecting
	// StateAuthPending indicates the login frame was sent and the
	// session is waiting for the acknowledgment.
	StateAuthPending
	// StateReady indicates subscriptions may be sent and data flows.
	StateReady
	// StateReconnecting indicates the session lost its transport and
	// is backing off before the next attempt.
	StateReconnecting
	// StateClosed is terminal; no further transitions happen.
	StateClosed
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	return [...]string{
		"disconnected",
		"connecting",
		"auth_pending",
		"ready",
		"reconnecting",
		"closed",
	}[s]
}

// State provides thread-safe atomic access to a SessionState value.
type State struct {
	state atomic.Int32
}

// Load returns the current session state.
func (s *State) Load() SessionState {
	return SessionState(s.state.Load())
}

// Store sets the session state to the given value.
func (s *State) Store(state SessionState) {
	s.state.Store(int32(state))
}

// CompareAndSwap atomically swaps old for new and reports whether the
// swap was performed.
func (s *State) CompareAndSwap(old, new SessionState) bool {
	return s.state.CompareAndSwap(int32(old), int32(new))
}

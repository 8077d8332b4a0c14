package core

import (
	"errors"
	"fmt"
)

// Classification buckets a venue failure for retry decisions.
// The same classification is consumed by the REST dispatcher and by
// the stream session's login handling.
type Classification int

const (
	// ClassUnknown marks an unrecognized venue code. Unknown codes are
	// treated as fatal so an unrecognized failure is never retried
	// silently.
	ClassUnknown Classification = iota
	// ClassTransient marks retryable failures: timeouts, HTTP 5xx and
	// explicit venue rate-limit codes.
	ClassTransient
	// ClassAuthFailure marks signature, timestamp and credential
	// rejections. Retrying with the same credentials cannot succeed.
	ClassAuthFailure
	// ClassClientError marks caller bugs: bad parameters, insufficient
	// balance, invalid symbol. Never retried.
	ClassClientError
	// ClassServerError marks venue-internal failures, retryable once.
	ClassServerError
)

// String returns the string representation of the classification.
func (c Classification) String() string {
	return [...]string{
		"UNKNOWN",
		"TRANSIENT",
		"AUTH_FAILURE",
		"CLIENT_ERROR",
		"SERVER_ERROR",
	}[c]
}

// Sentinel errors for local failure conditions.
var (
	// ErrSessionClosed is returned when using a closed stream session.
	ErrSessionClosed = errors.New("stream session is closed")
	// ErrNotReady is returned when a frame send is attempted while the
	// session is not in the Ready state.
	ErrNotReady = errors.New("stream session not ready")
	// ErrLoginPending is returned when a second login is attempted
	// while one is already in flight.
	ErrLoginPending = errors.New("login already in flight")
	// ErrDispatcherClosed is returned when using a closed dispatcher.
	ErrDispatcherClosed = errors.New("dispatcher is closed")
	// ErrCircuitOpen is returned when the circuit breaker rejects a
	// call before it reaches the wire.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// APIError is a venue failure carrying the original code and message.
// Every failure path surfaces the venue's code verbatim so callers can
// branch on it.
type APIError struct {
	// Class buckets the failure for retry decisions.
	Class Classification `json:"class"`
	// StatusCode is the HTTP status of the response, zero for
	// failures raised on WebSocket frames.
	StatusCode int `json:"status_code"`
	// Code is the venue error code (e.g. "40762").
	Code string `json:"code"`
	// Message is the venue error message, propagated verbatim.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d/%s): %s", e.Class, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Class, e.Code, e.Message)
}

// NewAPIError builds an APIError classifying the given status and code.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{
		Class:      Classify(statusCode, code),
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// IsTransient reports whether the error is classified as retryable.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class == ClassTransient
	}
	return false
}

// IsAuthFailure reports whether the error is a credential or signature
// rejection.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class == ClassAuthFailure
	}
	return false
}

// IsClientError reports whether the error is a caller bug that must
// not be retried.
func IsClientError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class == ClassClientError
	}
	return false
}

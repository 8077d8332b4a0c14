package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_VenueCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		code       string
		want       Classification
	}{
		{"rate limit code", http.StatusOK, "43011", ClassTransient},
		{"gateway 429 body code", http.StatusOK, "429", ClassTransient},
		{"signature error", http.StatusOK, "40009", ClassAuthFailure},
		{"invalid passphrase", http.StatusOK, "40011", ClassAuthFailure},
		{"timestamp expired", http.StatusOK, "40008", ClassAuthFailure},
		{"order exceeds balance", http.StatusOK, "40762", ClassClientError},
		{"insufficient balance", http.StatusOK, "43012", ClassClientError},
		{"parameter error", http.StatusOK, "40019", ClassClientError},
		{"venue internal", http.StatusOK, "50001", ClassServerError},
		{"unknown code is fatal", http.StatusOK, "99999", ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.statusCode, tt.code))
		})
	}
}

func TestClassify_CodeTakesPrecedenceOverStatus(t *testing.T) {
	// The venue reports application errors with HTTP 200; a known code
	// must win even against a contradictory status.
	assert.Equal(t, ClassClientError, Classify(http.StatusOK, "40762"))
	assert.Equal(t, ClassAuthFailure, Classify(http.StatusInternalServerError, "40009"))
}

func TestClassify_HTTPStatusFallback(t *testing.T) {
	tests := []struct {
		statusCode int
		want       Classification
	}{
		{http.StatusInternalServerError, ClassTransient},
		{http.StatusBadGateway, ClassTransient},
		{http.StatusServiceUnavailable, ClassTransient},
		{http.StatusTooManyRequests, ClassTransient},
		{http.StatusUnauthorized, ClassAuthFailure},
		{http.StatusForbidden, ClassAuthFailure},
		{http.StatusBadRequest, ClassClientError},
		{http.StatusNotFound, ClassClientError},
		{http.StatusTeapot, ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.statusCode), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.statusCode, ""))
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name    string
		class   Classification
		attempt int
		want    bool
	}{
		{"transient first attempt", ClassTransient, 0, true},
		{"transient later attempt", ClassTransient, 4, true},
		{"server error retries once", ClassServerError, 0, true},
		{"server error second attempt", ClassServerError, 1, false},
		{"auth failure never", ClassAuthFailure, 0, false},
		{"client error never", ClassClientError, 0, false},
		{"unknown never", ClassUnknown, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.class, tt.attempt))
		})
	}
}

func TestAPIError_PreservesCodeAndMessage(t *testing.T) {
	err := NewAPIError(http.StatusOK, "40762", "order amount exceeds the balance")

	assert.Equal(t, ClassClientError, err.Class)
	assert.Equal(t, "40762", err.Code)
	assert.Equal(t, "order amount exceeds the balance", err.Message)
	assert.Contains(t, err.Error(), "40762")
	assert.Contains(t, err.Error(), "order amount exceeds the balance")
}

func TestErrorPredicates(t *testing.T) {
	transient := NewAPIError(http.StatusOK, "43011", "too many requests")
	auth := NewAPIError(http.StatusOK, "40009", "sign signature error")
	client := NewAPIError(http.StatusOK, "40019", "parameter error")

	assert.True(t, IsTransient(transient))
	assert.False(t, IsTransient(auth))

	assert.True(t, IsAuthFailure(auth))
	assert.False(t, IsAuthFailure(client))

	assert.True(t, IsClientError(client))
	assert.False(t, IsClientError(transient))

	// Predicates see through wrapping.
	wrapped := fmt.Errorf("dispatch: %w", auth)
	assert.True(t, IsAuthFailure(wrapped))

	assert.False(t, IsTransient(errors.New("plain error")))
}

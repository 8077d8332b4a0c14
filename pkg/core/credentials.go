package core

import "errors"

// Credentials holds the API key triple used to sign requests and the
// WebSocket login frame. The value is immutable for the process
// lifetime: it is copied into the signer and the private stream
// session at construction and never exposed through logs or errors.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key"`
	// SecretKey is the private key used for HMAC signing.
	SecretKey string `json:"secret_key"`
	// Passphrase is the additional credential Bitget requires on
	// every private call.
	Passphrase string `json:"passphrase"`
}

// ErrMalformedCredentials is returned before any network activity when
// a credential field required for signing is missing.
var ErrMalformedCredentials = errors.New("malformed credentials")

// Validate checks that every field required for signing is present.
func (c *Credentials) Validate() error {
	if c == nil || c.APIKey == "" || c.SecretKey == "" || c.Passphrase == "" {
		return ErrMalformedCredentials
	}
	return nil
}

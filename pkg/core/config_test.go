package core

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.RateBudgets[RateTrade].Capacity)
	assert.Equal(t, 20, cfg.RateBudgets[RateInfo].Capacity)
}

func TestConfig_Validate_MissingBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = ""

	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_RejectsMalformedCredentials(t *testing.T) {
	cfg := DefaultConfig().WithCredentials(&Credentials{
		APIKey:    "key",
		SecretKey: "secret",
		// Passphrase missing.
	})

	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrMalformedCredentials)
}

func TestConfig_Chaining(t *testing.T) {
	creds := &Credentials{APIKey: "k", SecretKey: "s", Passphrase: "p"}
	cfg := DefaultConfig().
		WithCredentials(creds).
		WithTimeout(5 * time.Second).
		WithRateBudget(RateTrade, 3, time.Second).
		WithPingInterval(15 * time.Second)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.RateBudgets[RateTrade].Capacity)
	assert.Equal(t, 15*time.Second, cfg.PingInterval)
}

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   *Credentials
		wantErr bool
	}{
		{"complete", &Credentials{APIKey: "k", SecretKey: "s", Passphrase: "p"}, false},
		{"nil", nil, true},
		{"missing api key", &Credentials{SecretKey: "s", Passphrase: "p"}, true},
		{"missing secret", &Credentials{APIKey: "k", Passphrase: "p"}, true},
		{"missing passphrase", &Credentials{APIKey: "k", SecretKey: "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedCredentials)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvelope_SuccessByCodeOnly(t *testing.T) {
	var env Envelope
	require.NoError(t, sonic.Unmarshal(
		[]byte(`{"code":"00000","msg":"success","requestTime":1700000000000,"data":{"x":1}}`),
		&env,
	))

	assert.True(t, env.IsSuccess())
	assert.Equal(t, int64(1700000000000), env.RequestTime)
	assert.NotEmpty(t, env.Data)

	env.Code = "40762"
	assert.False(t, env.IsSuccess())
}

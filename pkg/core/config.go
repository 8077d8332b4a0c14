package core

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// RateCategory names one independent rate budget.
type RateCategory string

// Rate categories. Each category owns a token bucket; acquisitions in
// different categories never block each other.
const (
	RateTrade   RateCategory = "trade"
	RateAccount RateCategory = "account"
	RateInfo    RateCategory = "info"
)

// RateBudget is a token-bucket budget: Capacity tokens, refilled
// linearly over RefillInterval.
type RateBudget struct {
	Capacity       int           `json:"capacity" validate:"min=1"`
	RefillInterval time.Duration `json:"refill_interval" validate:"min=1ms"`
}

// Config holds all settings for the REST dispatcher and the stream
// sessions.
type Config struct {
	BaseURL      string `json:"base_url" validate:"required,url"`
	PublicWSURL  string `json:"public_ws_url" validate:"required"`
	PrivateWSURL string `json:"private_ws_url" validate:"required"`

	Credentials *Credentials `json:"credentials,omitempty"`

	// Timeout bounds each REST call end to end.
	Timeout      time.Duration `json:"timeout" validate:"min=1ms"`
	MaxRetries   int           `json:"max_retries" validate:"min=0"`
	RetryWaitMin time.Duration `json:"retry_wait_min" validate:"min=0"`
	RetryWaitMax time.Duration `json:"retry_wait_max" validate:"min=0"`

	RateBudgets map[RateCategory]RateBudget `json:"rate_budgets" validate:"dive"`

	// PingInterval is the heartbeat period; a pong must arrive within
	// twice this interval or the session reconnects.
	PingInterval     time.Duration `json:"ping_interval" validate:"min=0"`
	ConnectTimeout   time.Duration `json:"connect_timeout" validate:"min=0"`
	ReconnectWaitMin time.Duration `json:"reconnect_wait_min" validate:"min=0"`
	ReconnectWaitMax time.Duration `json:"reconnect_wait_max" validate:"min=0"`
	StreamBufferSize int           `json:"stream_buffer_size" validate:"min=0"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout"`
}

// DefaultConfig returns a Config with production endpoints and the
// documented per-category budgets: 10/s trading, 10/s account, 20/s
// market data.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://api.bitget.com",
		PublicWSURL:  "wss://ws.bitget.com/v2/ws/public",
		PrivateWSURL: "wss://ws.bitget.com/v2/ws/private",

		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,

		RateBudgets: map[RateCategory]RateBudget{
			RateTrade:   {Capacity: 10, RefillInterval: time.Second},
			RateAccount: {Capacity: 10, RefillInterval: time.Second},
			RateInfo:    {Capacity: 20, RefillInterval: time.Second},
		},

		PingInterval:     30 * time.Second,
		ConnectTimeout:   10 * time.Second,
		ReconnectWaitMin: 1 * time.Second,
		ReconnectWaitMax: 30 * time.Second,
		StreamBufferSize: 256,

		CircuitBreakerEnabled:          true,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,
	}
}

var validate = validator.New()

// Validate checks the configuration, including credential shape when
// credentials are present.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Credentials != nil {
		if err := c.Credentials.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithTimeout sets the REST call timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateBudget overrides one category budget and returns the config
// for chaining.
func (c *Config) WithRateBudget(category RateCategory, capacity int, interval time.Duration) *Config {
	if c.RateBudgets == nil {
		c.RateBudgets = make(map[RateCategory]RateBudget)
	}
	c.RateBudgets[category] = RateBudget{Capacity: capacity, RefillInterval: interval}
	return c
}

// WithPingInterval sets the heartbeat period and returns the config
// for chaining.
func (c *Config) WithPingInterval(interval time.Duration) *Config {
	c.PingInterval = interval
	return c
}

// Package rest implements the signed, rate-limited, retrying REST
// dispatcher.
package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"garuda/internal/backoff"
	"garuda/internal/circuitbreaker"
	"garuda/internal/ratelimit"
	"garuda/internal/sign"
	"garuda/pkg/core"
)

// Dispatcher executes REST requests against the venue. Each call is
// rate-gated per category, signed with a fresh timestamp per attempt,
// bounded by the configured timeout and retried per classification.
// Dispatchers are safe for concurrent use.
type Dispatcher struct {
	client  *resty.Client
	cfg     *core.Config
	creds   *core.Credentials
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.Breaker
	logger  zerolog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher from the given configuration.
func New(cfg *core.Config, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.AddContentTypeEncoder("application/json", func(w io.Writer, v any) error {
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	client.AddContentTypeDecoder("application/json", func(r io.Reader, v any) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return sonic.Unmarshal(data, v)
	})

	d := &Dispatcher{
		client:  client,
		cfg:     cfg,
		creds:   cfg.Credentials,
		limiter: ratelimit.New(cfg.RateBudgets),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}

	if cfg.CircuitBreakerEnabled {
		d.breaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    cfg.CircuitBreakerFailThreshold,
			SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
			Timeout:          cfg.CircuitBreakerTimeout,
		})
	}

	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Do executes a request and returns the parsed envelope. Transient
// failures are retried with exponential backoff for idempotent
// operations only; every attempt consumes one rate token and carries a
// fresh timestamp and signature.
func (d *Dispatcher) Do(ctx context.Context, req *core.Request) (*core.Envelope, error) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return nil, core.ErrDispatcherClosed
	}
	d.mu.RUnlock()

	if req.Authenticated {
		if err := d.creds.Validate(); err != nil {
			return nil, err
		}
	}

	maxAttempts := 1
	if req.Idempotent() && d.cfg.MaxRetries > 1 {
		maxAttempts = d.cfg.MaxRetries
	}

	category := ratelimit.CategoryForPath(req.Path)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff.Delay(attempt-1, d.cfg.RetryWaitMin, d.cfg.RetryWaitMax)
			d.logger.Debug().
				Dur("delay", delay).
				Int("attempt", attempt+1).
				Str("path", req.Path).
				Msg("retrying request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if d.breaker != nil && !d.breaker.Allow() {
			return nil, core.ErrCircuitOpen
		}

		if err := d.limiter.Wait(ctx, category); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		env, err := d.attempt(ctx, req)
		if d.breaker != nil {
			d.breaker.Record(err == nil || !isTransport(err))
		}
		if err == nil {
			return env, nil
		}
		lastErr = err

		var apiErr *core.APIError
		if !errors.As(err, &apiErr) || !core.Retryable(apiErr.Class, attempt) {
			return nil, err
		}
	}

	return nil, lastErr
}

// attempt performs one signed HTTP exchange.
func (d *Dispatcher) attempt(ctx context.Context, req *core.Request) (*core.Envelope, error) {
	query := req.Query.Encode()
	body := string(req.Body)

	r := d.client.R().SetContext(ctx)
	r.SetHeader("Content-Type", "application/json")
	r.SetHeader("locale", "en-US")

	if req.Authenticated {
		ts := strconv.FormatInt(d.now().UnixMilli(), 10)
		signature := sign.Sign(d.creds.SecretKey, ts, req.Method, req.Path, query, body)
		r.SetHeader("ACCESS-KEY", d.creds.APIKey)
		r.SetHeader("ACCESS-SIGN", signature)
		r.SetHeader("ACCESS-TIMESTAMP", ts)
		r.SetHeader("ACCESS-PASSPHRASE", d.creds.Passphrase)
	}

	if len(req.Body) > 0 {
		// The signed bytes are the transmitted bytes.
		r.SetBody(req.Body)
	}

	// The query string is appended verbatim so the transmitted URL
	// matches the signed one byte for byte.
	url := req.Path
	if query != "" {
		url += "?" + query
	}

	var resp *resty.Response
	var err error
	switch req.Method {
	case http.MethodGet:
		resp, err = r.Get(url)
	case http.MethodPost:
		resp, err = r.Post(url)
	case http.MethodPut:
		resp, err = r.Put(url)
	case http.MethodDelete:
		resp, err = r.Delete(url)
	default:
		return nil, fmt.Errorf("unsupported http method: %s", req.Method)
	}

	if err != nil {
		d.logger.Error().Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("http request failed")
		return nil, classifyTransport(err)
	}

	d.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode()).
		Msg("http response")

	var env core.Envelope
	if unmarshalErr := sonic.Unmarshal(resp.Bytes(), &env); unmarshalErr != nil || env.Code == "" {
		return nil, core.NewAPIError(resp.StatusCode(), "", http.StatusText(resp.StatusCode()))
	}

	// Success is decided by the envelope code alone; the venue reports
	// application errors with HTTP 200.
	if !env.IsSuccess() {
		return nil, core.NewAPIError(resp.StatusCode(), env.Code, env.Msg)
	}
	return &env, nil
}

// Close shuts the dispatcher down; further calls fail fast.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.client.Close()
}

const (
	codeTimeout = "TIMEOUT"
	codeNetwork = "NETWORK_ERROR"
)

// classifyTransport wraps a transport failure as a transient APIError
// so the retry loop can treat timeouts and network errors uniformly.
func classifyTransport(err error) *core.APIError {
	code := codeNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		code = codeTimeout
	}
	return &core.APIError{
		Class:      core.ClassTransient,
		Code:       code,
		Message:    err.Error(),
		StatusCode: 0,
	}
}

func isTransport(err error) bool {
	var apiErr *core.APIError
	return errors.As(err, &apiErr) &&
		(apiErr.Code == codeTimeout || apiErr.Code == codeNetwork)
}

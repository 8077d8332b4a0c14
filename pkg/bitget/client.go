// Package bitget is the venue-facing layer: a client facade over the
// REST dispatcher and the public/private stream sessions, plus typed
// endpoint wrappers for the spot and futures APIs.
package bitget

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"garuda/pkg/core"
	"garuda/pkg/rest"
	"garuda/pkg/stream"
)

// Client bundles the REST dispatcher and the stream sessions behind one
// surface. Sessions are dialed lazily on first subscription; both share
// a single registry so the desired-subscription set survives reconnects
// of either connection.
type Client struct {
	cfg        *core.Config
	dispatcher *rest.Dispatcher
	registry   *stream.Registry
	logger     zerolog.Logger

	mu      sync.Mutex
	public  *stream.Session
	private *stream.Session
	closed  bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger shared by the dispatcher and the
// stream sessions.
func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client from the given configuration.
func NewClient(cfg *core.Config, opts ...ClientOption) (*Client, error) {
	c := &Client{
		cfg:      cfg,
		registry: stream.NewRegistry(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	dispatcher, err := rest.New(cfg, rest.WithLogger(c.logger))
	if err != nil {
		return nil, fmt.Errorf("create dispatcher: %w", err)
	}
	c.dispatcher = dispatcher
	return c, nil
}

// Dispatch executes one REST request through the dispatcher.
func (c *Client) Dispatch(ctx context.Context, req *core.Request) (*core.Envelope, error) {
	return c.dispatcher.Do(ctx, req)
}

// Subscribe adds the subscription to the desired set and routes it to
// the matching session, dialing the session on first use.
func (c *Client) Subscribe(ctx context.Context, sub core.Subscription, handler stream.Handler) error {
	session, err := c.session(ctx, sub.Private)
	if err != nil {
		return err
	}
	return session.Subscribe(sub, handler)
}

// Unsubscribe removes the subscription from the desired set. It is a
// no-op when the matching session was never dialed.
func (c *Client) Unsubscribe(sub core.Subscription) error {
	c.mu.Lock()
	session := c.public
	if sub.Private {
		session = c.private
	}
	c.mu.Unlock()

	if session == nil {
		c.registry.Remove(sub)
		return nil
	}
	return session.Unsubscribe(sub)
}

// SetCredentials replaces the private session credentials. A session
// parked after a rejected login resumes after Reconnect.
func (c *Client) SetCredentials(creds *core.Credentials) error {
	c.mu.Lock()
	session := c.private
	c.mu.Unlock()

	if session == nil {
		return fmt.Errorf("no private session open")
	}
	return session.SetCredentials(creds)
}

// Reconnect forces a fresh connection on the private session.
func (c *Client) Reconnect() error {
	c.mu.Lock()
	session := c.private
	c.mu.Unlock()

	if session == nil {
		return fmt.Errorf("no private session open")
	}
	return session.Reconnect()
}

// Close shuts down the dispatcher and any open sessions.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	public, private := c.public, c.private
	c.mu.Unlock()

	var firstErr error
	if public != nil {
		if err := public.Close(); err != nil {
			firstErr = err
		}
	}
	if private != nil {
		if err := private.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := c.dispatcher.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// session returns the open session for the given visibility, dialing
// and opening it on first use.
func (c *Client) session(ctx context.Context, private bool) (*stream.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, core.ErrSessionClosed
	}

	existing := c.public
	if private {
		existing = c.private
	}
	if existing != nil {
		return existing, nil
	}

	url := c.cfg.PublicWSURL
	if private {
		url = c.cfg.PrivateWSURL
	}

	session := stream.NewSession(stream.Config{
		URL:              url,
		Private:          private,
		Credentials:      c.cfg.Credentials,
		PingInterval:     c.cfg.PingInterval,
		ConnectTimeout:   c.cfg.ConnectTimeout,
		ReconnectWaitMin: c.cfg.ReconnectWaitMin,
		ReconnectWaitMax: c.cfg.ReconnectWaitMax,
		BufferSize:       c.cfg.StreamBufferSize,
	}, c.registry, stream.WithLogger(c.logger))

	if err := session.Open(ctx); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("open stream session: %w", err)
	}

	if private {
		c.private = session
	} else {
		c.public = session
	}
	return session, nil
}

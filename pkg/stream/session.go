// Package stream manages WebSocket sessions against the venue: login,
// heartbeats, subscription replay, reconnection and message routing.
package stream

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"github.com/rs/zerolog"

	"garuda/internal/backoff"
	"garuda/internal/sign"
	"garuda/pkg/core"
)

var pingFrame = []byte(`{"op":"ping"}`)

// Config holds the settings of one stream session.
type Config struct {
	// URL is the WebSocket endpoint.
	URL string
	// Private sessions authenticate before reaching Ready and carry
	// private channels only.
	Private bool
	// Credentials are required for private sessions.
	Credentials *core.Credentials
	// PingInterval is the heartbeat period. A pong must arrive within
	// twice this interval or the session forces a reconnect.
	PingInterval time.Duration
	// ConnectTimeout bounds each individual connect attempt.
	ConnectTimeout time.Duration
	// ReconnectWaitMin and ReconnectWaitMax bound the backoff between
	// reconnect attempts.
	ReconnectWaitMin time.Duration
	ReconnectWaitMax time.Duration
	// BufferSize is the capacity of the ordered delivery queue.
	BufferSize int
}

// Session manages one WebSocket connection's lifecycle. Inbound frames
// are delivered to handlers in arrival order on a single delivery
// goroutine; outbound pings and subscribes never wait on handler work.
type Session struct {
	cfg      Config
	state    *State
	registry *Registry
	handler  *sessionHandler
	logger   zerolog.Logger
	now      func() time.Time

	mu         sync.RWMutex
	conn       *gws.Conn
	connDone   chan struct{}
	loginCh    chan error
	creds      *core.Credentials
	handlers   map[string]Handler
	fallback   Handler
	errHandler func(error)
	attempts   int

	events       chan Event
	stopCh       chan struct{}
	wg           sync.WaitGroup
	loginPending atomic.Bool
	reconnecting atomic.Bool
	lastPong     atomic.Int64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session bound to a registry. The session only
// replays subscriptions matching its visibility (public or private).
// Close must be called to release the delivery goroutine.
func NewSession(cfg Config, registry *Registry, opts ...SessionOption) *Session {
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ReconnectWaitMin == 0 {
		cfg.ReconnectWaitMin = 1 * time.Second
	}
	if cfg.ReconnectWaitMax == 0 {
		cfg.ReconnectWaitMax = 30 * time.Second
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 256
	}

	s := &Session{
		cfg:      cfg,
		state:    &State{},
		registry: registry,
		creds:    cfg.Credentials,
		handlers: make(map[string]Handler),
		events:   make(chan Event, cfg.BufferSize),
		stopCh:   make(chan struct{}),
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	s.state.Store(StateDisconnected)
	s.handler = &sessionHandler{s: s}

	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.dispatchLoop()
	}()
	return s
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.state.Load()
}

// OnEvent registers the fallback handler for data frames that have no
// subscription-specific handler.
func (s *Session) OnEvent(handler Handler) {
	s.mu.Lock()
	s.fallback = handler
	s.mu.Unlock()
}

// OnError registers a handler notified of fatal session failures, such
// as a rejected login.
func (s *Session) OnError(handler func(error)) {
	s.mu.Lock()
	s.errHandler = handler
	s.mu.Unlock()
}

// SetCredentials replaces the session credentials. A session parked
// after a login rejection resumes only after fresh credentials and an
// explicit Reconnect.
func (s *Session) SetCredentials(creds *core.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	return nil
}

// Open establishes the connection and, for private sessions, performs
// the login handshake. It returns once the session is Ready.
func (s *Session) Open(ctx context.Context) error {
	if !s.state.CompareAndSwap(StateDisconnected, StateConnecting) {
		current := s.state.Load()
		if current == StateReady {
			return nil
		}
		return fmt.Errorf("invalid state for open: %s", current)
	}

	if s.cfg.Private {
		s.mu.RLock()
		creds := s.creds
		s.mu.RUnlock()
		if err := creds.Validate(); err != nil {
			s.state.Store(StateDisconnected)
			return err
		}
	}

	if err := s.connect(ctx); err != nil {
		if s.state.Load() != StateClosed {
			s.state.Store(StateDisconnected)
		}
		return err
	}
	return nil
}

// Reconnect forces a fresh connection. On a Ready session the current
// transport is dropped and the reconnect loop takes over; on a session
// parked after a login rejection it restarts the loop.
func (s *Session) Reconnect() error {
	switch s.state.Load() {
	case StateClosed:
		return core.ErrSessionClosed
	case StateReady:
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn != nil {
			_ = conn.NetConn().Close()
		}
		return nil
	case StateReconnecting:
		s.spawnReconnect()
		return nil
	case StateDisconnected:
		return fmt.Errorf("session not open")
	default:
		return nil
	}
}

// Subscribe records the desired subscription and registers its
// handler. When the session is Ready the subscribe frame goes out
// immediately; otherwise it is replayed on the next Ready transition.
// Adding an already-present subscription is a no-op.
func (s *Session) Subscribe(sub core.Subscription, handler Handler) error {
	if s.state.Load() == StateClosed {
		return core.ErrSessionClosed
	}
	if sub.Private != s.cfg.Private {
		return fmt.Errorf("subscription %s does not match session visibility", sub.Key())
	}

	if handler != nil {
		s.mu.Lock()
		s.handlers[sub.Key()] = handler
		s.mu.Unlock()
	}

	if s.registry.Add(sub) && s.state.Load() == StateReady {
		return s.writeFrame(opFrame{Op: "subscribe", Args: []core.Subscription{sub}})
	}
	return nil
}

// Unsubscribe removes the subscription and its handler, sending an
// unsubscribe frame when the session is Ready.
func (s *Session) Unsubscribe(sub core.Subscription) error {
	if s.state.Load() == StateClosed {
		return core.ErrSessionClosed
	}

	s.mu.Lock()
	delete(s.handlers, sub.Key())
	s.mu.Unlock()

	if s.registry.Remove(sub) && s.state.Load() == StateReady {
		return s.writeFrame(opFrame{Op: "unsubscribe", Args: []core.Subscription{sub}})
	}
	return nil
}

// Close tears the session down. Terminal: the session cannot be
// reopened afterwards.
func (s *Session) Close() error {
	for {
		current := s.state.Load()
		if current == StateClosed {
			return nil
		}
		if s.state.CompareAndSwap(current, StateClosed) {
			break
		}
	}

	close(s.stopCh)

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	if s.connDone != nil {
		close(s.connDone)
		s.connDone = nil
	}
	s.mu.Unlock()

	if conn != nil {
		_ = conn.NetConn().Close()
	}

	s.wg.Wait()
	return nil
}

// connect dials, authenticates when private and brings the session to
// Ready. The caller owns the state on failure.
func (s *Session) connect(ctx context.Context) error {
	socket, _, err := gws.NewClient(s.handler, &gws.ClientOption{
		Addr:             s.cfg.URL,
		HandshakeTimeout: s.cfg.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}

	done := make(chan struct{})
	loginCh := make(chan error, 1)
	s.mu.Lock()
	s.conn = socket
	s.connDone = done
	s.loginCh = loginCh
	s.mu.Unlock()

	s.lastPong.Store(s.now().UnixMilli())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		socket.ReadLoop()
	}()

	if s.cfg.Private {
		s.state.Store(StateAuthPending)
		if err := s.sendLogin(socket); err != nil {
			s.dropConn(socket)
			return err
		}
		select {
		case err := <-loginCh:
			if err != nil {
				s.dropConn(socket)
				return err
			}
		case <-ctx.Done():
			s.dropConn(socket)
			return ctx.Err()
		case <-s.stopCh:
			s.dropConn(socket)
			return core.ErrSessionClosed
		}
	}

	if !s.enterReady(socket, done) {
		s.dropConn(socket)
		return core.ErrSessionClosed
	}
	return nil
}

// sendLogin writes the login frame. This is the only frame allowed out
// before Ready, and at most one login is in flight per session.
func (s *Session) sendLogin(socket *gws.Conn) error {
	if !s.loginPending.CompareAndSwap(false, true) {
		return core.ErrLoginPending
	}

	s.mu.RLock()
	creds := s.creds
	s.mu.RUnlock()

	ts := strconv.FormatInt(s.now().Unix(), 10)
	frame := opFrame{Op: "login", Args: []loginArgs{{
		APIKey:     creds.APIKey,
		Passphrase: creds.Passphrase,
		Timestamp:  ts,
		Sign:       sign.LoginSign(creds.SecretKey, ts),
	}}}

	data, err := sonic.Marshal(frame)
	if err != nil {
		s.loginPending.Store(false)
		return fmt.Errorf("marshal login frame: %w", err)
	}
	if err := socket.WriteMessage(gws.OpcodeText, data); err != nil {
		s.loginPending.Store(false)
		return fmt.Errorf("send login frame: %w", err)
	}

	s.logger.Debug().Msg("login frame sent")
	return nil
}

// enterReady transitions to Ready, starts the heartbeat and replays
// the desired subscriptions. Replay is repeat-safe: the registry set
// yields each active subscription exactly once per call.
func (s *Session) enterReady(socket *gws.Conn, done chan struct{}) bool {
	if !s.state.CompareAndSwap(StateConnecting, StateReady) &&
		!s.state.CompareAndSwap(StateAuthPending, StateReady) {
		return false
	}

	s.mu.Lock()
	s.attempts = 0
	s.mu.Unlock()

	s.logger.Info().
		Str("url", s.cfg.URL).
		Bool("private", s.cfg.Private).
		Msg("stream session ready")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.heartbeat(socket, done)
	}()

	if err := s.replay(); err != nil {
		s.logger.Error().Err(err).Msg("subscription replay failed")
	}
	return true
}

// replay sends one batched subscribe frame covering every desired
// subscription visible to this session.
func (s *Session) replay() error {
	subs := s.registry.ActiveFor(s.cfg.Private)
	if len(subs) == 0 {
		return nil
	}
	s.logger.Info().Int("count", len(subs)).Msg("replaying subscriptions")
	return s.writeFrame(opFrame{Op: "subscribe", Args: subs})
}

// heartbeat pings every interval while Ready and forces a reconnect
// when no pong arrived within twice the interval.
func (s *Session) heartbeat(socket *gws.Conn, done chan struct{}) {
	grace := 2 * s.cfg.PingInterval
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if s.state.Load() != StateReady {
				return
			}
			if time.Since(time.UnixMilli(s.lastPong.Load())) > grace {
				s.logger.Warn().
					Dur("grace", grace).
					Msg("heartbeat timeout, dropping connection")
				_ = socket.NetConn().Close()
				return
			}
			if err := socket.WriteMessage(gws.OpcodeText, pingFrame); err != nil {
				s.logger.Warn().Err(err).Msg("ping send failed")
				return
			}
		}
	}
}

// writeFrame marshals and sends a control frame. Sends are refused
// outside the Ready state; the login frame bypasses this via sendLogin.
func (s *Session) writeFrame(frame opFrame) error {
	data, err := sonic.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.conn == nil || s.state.Load() != StateReady {
		return core.ErrNotReady
	}
	return s.conn.WriteMessage(gws.OpcodeText, data)
}

// dropConn disowns and closes a connection after a failed connect or
// login attempt so its OnClose does not trigger a second reconnect.
func (s *Session) dropConn(socket *gws.Conn) {
	s.mu.Lock()
	if s.conn == socket {
		s.conn = nil
	}
	if s.connDone != nil {
		close(s.connDone)
		s.connDone = nil
	}
	s.mu.Unlock()

	s.loginPending.Store(false)
	_ = socket.NetConn().Close()
}

// spawnReconnect starts the reconnect loop unless one is running.
func (s *Session) spawnReconnect() {
	if !s.reconnecting.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.reconnecting.Store(false)
		s.reconnectLoop()
	}()
}

// reconnectLoop retries the connection with the shared backoff policy.
// Attempts are unbounded unless the session is closed or the login is
// rejected; a rejected login parks the session until the caller
// supplies fresh credentials and calls Reconnect.
func (s *Session) reconnectLoop() {
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		s.mu.Lock()
		attempt := s.attempts
		s.attempts++
		s.mu.Unlock()

		wait := backoff.Delay(attempt, s.cfg.ReconnectWaitMin, s.cfg.ReconnectWaitMax)
		s.logger.Info().
			Dur("wait", wait).
			Int("attempt", attempt+1).
			Msg("reconnecting")

		select {
		case <-time.After(wait):
		case <-s.stopCh:
			return
		}

		if !s.state.CompareAndSwap(StateReconnecting, StateConnecting) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConnectTimeout)
		err := s.connect(ctx)
		cancel()
		if err == nil {
			s.logger.Info().Msg("reconnected")
			return
		}
		if s.state.Load() == StateClosed {
			return
		}

		s.state.Store(StateReconnecting)

		if core.IsAuthFailure(err) {
			s.logger.Error().Err(err).Msg("login rejected, reconnect parked")
			s.notifyError(err)
			return
		}

		s.logger.Error().Err(err).Int("attempt", attempt+1).Msg("reconnect failed")
	}
}

func (s *Session) notifyError(err error) {
	s.mu.RLock()
	handler := s.errHandler
	s.mu.RUnlock()
	if handler != nil {
		handler(err)
	}
}

// dispatchLoop delivers data frames to handlers in arrival order.
func (s *Session) dispatchLoop() {
	for {
		select {
		case <-s.stopCh:
			return
		case ev := <-s.events:
			s.mu.RLock()
			handler := s.handlers[ev.Arg.Key()]
			fallback := s.fallback
			s.mu.RUnlock()

			switch {
			case handler != nil:
				handler(ev)
			case fallback != nil:
				fallback(ev)
			default:
				s.logger.Debug().Str("key", ev.Arg.Key()).Msg("no handler for frame, dropping")
			}
		}
	}
}

func (s *Session) enqueue(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn().
			Str("channel", ev.Arg.Channel).
			Msg("delivery queue full, dropping frame")
	}
}

// completeLogin resolves the pending login with the ack outcome. A
// rejected login is surfaced as an auth failure unless the venue code
// classifies as transient.
func (s *Session) completeLogin(frame *wireFrame) {
	if !s.loginPending.CompareAndSwap(true, false) {
		return
	}

	var result error
	if !frame.loginOK() {
		apiErr := core.NewAPIError(0, frame.codeString(), frame.Msg)
		if apiErr.Class != core.ClassTransient {
			apiErr.Class = core.ClassAuthFailure
		}
		result = apiErr
	}

	s.mu.RLock()
	ch := s.loginCh
	s.mu.RUnlock()
	if ch != nil {
		select {
		case ch <- result:
		default:
		}
	}
}

func (s *Session) handleControl(frame *wireFrame) {
	switch frame.Event {
	case "pong":
		s.lastPong.Store(s.now().UnixMilli())
	case "login":
		s.completeLogin(frame)
	case "subscribe", "unsubscribe":
		s.logger.Debug().
			Str("event", frame.Event).
			Str("channel", frame.Arg.Channel).
			Str("instId", frame.Arg.InstID).
			Msg("subscription ack")
	case "error":
		// A rejected login arrives as an error event, not a login ack.
		if s.loginPending.Load() {
			s.completeLogin(frame)
			return
		}
		s.logger.Warn().
			Str("code", frame.codeString()).
			Str("msg", frame.Msg).
			Msg("venue stream error")
	default:
		s.logger.Debug().Str("event", frame.Event).Msg("unhandled control event")
	}
}

// sessionHandler adapts the gws event callbacks onto the session.
type sessionHandler struct {
	s *Session
}

func (h *sessionHandler) OnOpen(socket *gws.Conn) {
	h.s.logger.Info().Str("url", h.s.cfg.URL).Msg("websocket connected")
	_ = socket.SetDeadline(time.Time{})
}

func (h *sessionHandler) OnClose(socket *gws.Conn, err error) {
	s := h.s

	s.mu.Lock()
	owned := s.conn == socket
	if owned {
		s.conn = nil
		if s.connDone != nil {
			close(s.connDone)
			s.connDone = nil
		}
	}
	loginCh := s.loginCh
	s.mu.Unlock()

	if !owned || s.state.Load() == StateClosed {
		return
	}

	s.logger.Warn().Err(err).Str("url", s.cfg.URL).Msg("websocket disconnected")

	// A drop during the login handshake is resolved through the
	// connect path, which owns the state.
	if s.loginPending.CompareAndSwap(true, false) {
		transportErr := &core.APIError{
			Class:   core.ClassTransient,
			Code:    "CONNECTION_DROPPED",
			Message: fmt.Sprintf("connection dropped during login: %v", err),
		}
		if loginCh != nil {
			select {
			case loginCh <- transportErr:
			default:
			}
		}
		return
	}

	if s.state.CompareAndSwap(StateReady, StateReconnecting) {
		s.spawnReconnect()
	}
}

func (h *sessionHandler) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.WritePong(payload)
}

func (h *sessionHandler) OnPong(socket *gws.Conn, payload []byte) {
	h.s.lastPong.Store(h.s.now().UnixMilli())
}

func (h *sessionHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	s := h.s

	data := message.Bytes()
	if len(data) == 0 {
		return
	}

	// The venue answers the JSON ping with a bare "pong" text frame.
	if string(data) == "pong" {
		s.lastPong.Store(s.now().UnixMilli())
		return
	}

	var frame wireFrame
	if err := sonic.Unmarshal(data, &frame); err != nil {
		s.logger.Warn().Err(err).Msg("dropping malformed frame")
		return
	}

	switch {
	case frame.Event != "":
		s.handleControl(&frame)
	case frame.Action != "":
		s.enqueue(Event{Action: frame.Action, Arg: frame.Arg, Data: frame.Data, Ts: frame.Ts})
	default:
		s.logger.Debug().Str("frame", string(data)).Msg("dropping unroutable frame")
	}
}

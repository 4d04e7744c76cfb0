// Package client keeps one logical connection to the sync server alive and
// routes the events it receives to subscribers.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/thenoetrevino/pasosync/internal/events"
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	URL                  string
	HeartbeatInterval    time.Duration
	ReconnectBase        time.Duration
	MaxReconnectAttempts int
	DialTimeout          time.Duration
	User                 string // Reported to the server on every handshake

	Logger *slog.Logger
	Dialer Dialer
	Clock  Clock
}

const (
	DefaultHeartbeatInterval    = 25 * time.Second
	DefaultReconnectBase        = 1 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultDialTimeout          = 10 * time.Second
)

func (o Options) withDefaults() Options {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.ReconnectBase <= 0 {
		o.ReconnectBase = DefaultReconnectBase
	}
	if o.MaxReconnectAttempts <= 0 {
		o.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = DefaultDialTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Dialer == nil {
		d := WebsocketDialer{HandshakeTimeout: o.DialTimeout}
		if o.User != "" {
			d.Header = http.Header{events.UserHeader: []string{o.User}}
		}
		o.Dialer = d
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	return o
}

// Service owns the single connection of a client process. Every state
// transition happens under mu and is tagged with the epoch it belongs to;
// callbacks from an older epoch (a socket or timer from before a close or
// reconnect) find the epoch moved on and do nothing.
type Service struct {
	opts   Options
	logger *slog.Logger
	subs   *Subscriptions

	mu             sync.Mutex
	state          State
	socket         Socket
	epoch          uint64
	attempts       int
	backoff        time.Duration
	everConnected  bool
	heartbeat      Timer
	reconnectTimer Timer
	onOpen         map[int]func(reconnected bool)
	nextOnOpenID   int
}

// New creates a disconnected service. Call Connect to open it.
func New(opts Options) *Service {
	opts = opts.withDefaults()
	logger := opts.Logger.With("component", "client")
	return &Service{
		opts:    opts,
		logger:  logger,
		subs:    NewSubscriptions(logger),
		state:   Disconnected,
		backoff: opts.ReconnectBase,
		onOpen:  make(map[int]func(bool)),
	}
}

// State returns the current connection state
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscriptions returns the routing registry
func (s *Service) Subscriptions() *Subscriptions {
	return s.subs
}

// Subscribe routes every eventType envelope to h until the returned function is called
func (s *Service) Subscribe(eventType events.EventType, h Handler) (unsubscribe func()) {
	return s.subs.Subscribe(eventType, h)
}

// OnOpen registers fn to run each time the connection opens. reconnected is
// false the first time and true after any gap, when events may have been missed.
func (s *Service) OnOpen(fn func(reconnected bool)) (remove func()) {
	s.mu.Lock()
	id := s.nextOnOpenID
	s.nextOnOpenID++
	s.onOpen[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.onOpen, id)
		s.mu.Unlock()
	}
}

// Connect opens the connection in the background. It is a no-op while
// connected, connecting or waiting for a scheduled reconnect. Calling it
// after reconnection gave up starts a fresh attempt sequence.
func (s *Service) Connect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectLocked()
}

func (s *Service) connectLocked() {
	switch s.state {
	case Connected, Connecting, Reconnecting:
		return
	}
	if s.attempts >= s.opts.MaxReconnectAttempts {
		s.attempts = 0
		s.backoff = s.opts.ReconnectBase
	}
	s.dialLocked()
}

// dialLocked moves to Connecting and dials on a new epoch
func (s *Service) dialLocked() {
	s.epoch++
	s.state = Connecting
	go s.dial(s.epoch)
}

func (s *Service) dial(epoch uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.DialTimeout)
	defer cancel()

	sock, err := s.opts.Dialer.Dial(ctx, s.opts.URL)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		if sock != nil {
			_ = sock.Close()
		}
		return
	}
	if err != nil {
		terr := events.ClassifyTransportError(err)
		s.logger.Warn("connection failed", "url", s.opts.URL, "code", terr.Code, "hint", terr.Hint, "error", err)
		s.handleCloseLocked(CloseCodeAbnormal)
		s.mu.Unlock()
		return
	}

	s.socket = sock
	s.state = Connected
	s.attempts = 0
	s.backoff = s.opts.ReconnectBase
	reconnected := s.everConnected
	s.everConnected = true
	s.scheduleHeartbeatLocked(epoch)

	callbacks := make([]func(bool), 0, len(s.onOpen))
	for _, fn := range s.onOpen {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	s.logger.Info("connected to sync server", "url", s.opts.URL, "reconnected", reconnected)
	for _, fn := range callbacks {
		fn(reconnected)
	}

	go s.readLoop(epoch, sock)
}

// CloseCodeAbnormal is the code recorded for a connection that dropped without a close frame
const CloseCodeAbnormal = 1006

func (s *Service) readLoop(epoch uint64, sock Socket) {
	for {
		data, err := sock.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if epoch == s.epoch {
				code := CloseCode(err)
				s.logger.Debug("connection closed", "code", code, "error", err)
				s.handleCloseLocked(code)
			}
			s.mu.Unlock()
			return
		}

		if !s.current(epoch) {
			return
		}
		s.handleMessage(data)
	}
}

func (s *Service) current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch == s.epoch
}

func (s *Service) handleMessage(data []byte) {
	env, heartbeat, err := events.Decode(data)
	if heartbeat {
		return
	}
	if err != nil {
		s.logger.Warn("dropping malformed message", "error", err)
		return
	}

	switch env.Type {
	case events.Connected:
		var payload events.ConnectedPayload
		if err := env.DecodePayload(&payload); err == nil {
			s.logger.Info("server greeting", "message", payload.Message, "clients", payload.ClientCount)
		}
		return
	case events.Error:
		var payload events.ErrorPayload
		if err := env.DecodePayload(&payload); err == nil {
			s.logger.Warn("server rejected a command", "message", payload.Message)
		}
	}

	s.subs.Dispatch(env)
}

// handleCloseLocked tears down the current socket and decides whether to
// reconnect. Only non-clean closes are retried.
func (s *Service) handleCloseLocked(code int) {
	s.stopHeartbeatLocked()
	s.socket = nil
	s.state = Disconnected

	if IsCleanClose(code) {
		s.logger.Info("connection closed cleanly")
		return
	}

	if s.attempts >= s.opts.MaxReconnectAttempts {
		s.logger.Error("giving up on sync server",
			"attempts", s.attempts,
			"error", events.ErrReconnectExhausted)
		return
	}

	delay := s.backoff
	s.attempts++
	s.backoff *= 2
	s.state = Reconnecting

	epoch := s.epoch
	s.logger.Info("reconnecting", "attempt", s.attempts, "max_attempts", s.opts.MaxReconnectAttempts, "delay", delay)
	s.reconnectTimer = s.opts.Clock.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if epoch != s.epoch || s.state != Reconnecting {
			return
		}
		s.reconnectTimer = nil
		s.dialLocked()
	})
}

func (s *Service) scheduleHeartbeatLocked(epoch uint64) {
	s.heartbeat = s.opts.Clock.AfterFunc(s.opts.HeartbeatInterval, func() {
		s.mu.Lock()
		if epoch != s.epoch || s.state != Connected {
			s.mu.Unlock()
			return
		}
		sock := s.socket
		s.scheduleHeartbeatLocked(epoch)
		s.mu.Unlock()

		data, err := events.EncodeCommand(events.Ping, nil)
		if err == nil {
			err = sock.WriteMessage(data)
		}
		if err != nil {
			s.logger.Debug("heartbeat failed", "error", err)
		}
	})
}

func (s *Service) stopHeartbeatLocked() {
	if s.heartbeat != nil {
		s.heartbeat.Stop()
		s.heartbeat = nil
	}
}

// Send transmits a command if connected. Otherwise it starts connecting and
// drops the command: there is no outbound queue.
func (s *Service) Send(commandType string, payload any) error {
	s.mu.Lock()
	if s.state != Connected {
		s.connectLocked()
		s.mu.Unlock()
		return fmt.Errorf("send %s: %w", commandType, events.ErrNotConnected)
	}
	sock := s.socket
	s.mu.Unlock()

	data, err := events.EncodeCommand(commandType, payload)
	if err != nil {
		return err
	}
	if err := sock.WriteMessage(data); err != nil {
		return fmt.Errorf("send %s: %w", commandType, errors.Join(events.ErrTransport, err))
	}
	return nil
}

// Close tears the connection down, cancels every timer and leaves the
// service Disconnected. It is idempotent.
func (s *Service) Close() error {
	s.mu.Lock()
	s.epoch++
	s.stopHeartbeatLocked()
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	sock := s.socket
	s.socket = nil
	s.state = Disconnected
	s.attempts = 0
	s.backoff = s.opts.ReconnectBase
	s.mu.Unlock()

	if sock != nil {
		return sock.Close()
	}
	return nil
}

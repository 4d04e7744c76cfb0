// Package daemon is the server half of live sync: it keeps the set of
// connected clients alive and fans domain events out to them.
package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/pasosync/internal/events"
)

// Options configures a Server. Zero values fall back to DefaultOptions.
type Options struct {
	HeartbeatInterval time.Duration
	ClientBuffer      int // Per-client outbound queue size
	WriteWait         time.Duration
	MaxMessageSize    int64
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		HeartbeatInterval: 30 * time.Second,
		ClientBuffer:      64,
		WriteWait:         10 * time.Second,
		MaxMessageSize:    64 * 1024,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = def.HeartbeatInterval
	}
	if o.ClientBuffer <= 0 {
		o.ClientBuffer = def.ClientBuffer
	}
	if o.WriteWait <= 0 {
		o.WriteWait = def.WriteWait
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = def.MaxMessageSize
	}
	return o
}

// Server accepts websocket clients, answers their heartbeats, relays their
// editing commands and runs the eviction heartbeat.
type Server struct {
	opts     Options
	registry *Registry
	hub      *Hub
	metrics  *Metrics
	upgrader websocket.Upgrader
	logger   *slog.Logger

	shutdownOnce sync.Once
}

// NewServer creates a sync server. Mount it on the websocket path.
func NewServer(opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "daemon")

	metrics := NewMetrics()
	registry := NewRegistry(metrics, logger)

	return &Server{
		opts:     opts.withDefaults(),
		registry: registry,
		hub:      NewHub(registry, metrics, logger),
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Browser clients may be served from another origin
			},
		},
		logger: logger,
	}
}

// Hub returns the broadcast hub
func (s *Server) Hub() *Hub { return s.hub }

// Registry returns the connection registry
func (s *Server) Registry() *Registry { return s.registry }

// Metrics returns the live counters
func (s *Server) Metrics() *Metrics { return s.metrics }

// Run drives the heartbeat until ctx is done, then closes every connection
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("heartbeat started", "interval", s.opts.HeartbeatInterval)
	s.registry.Run(ctx, s.opts.HeartbeatInterval)
	s.Shutdown()
	return nil
}

// Shutdown closes all client connections
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.logger.Info("shutting down sync server", "clients", s.registry.Count())
		s.registry.CloseAll()
	})
}

// ServeHTTP upgrades the request and services the connection until it closes
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := newConn(uuid.NewString(), r.RemoteAddr, ws, s.opts.ClientBuffer, s.opts.WriteWait)
	c.User = r.Header.Get(events.UserHeader)
	c.startWriter(s.logger)
	s.registry.Register(c)

	s.readPump(c, ws)
}

// readPump reads commands until the socket fails, then removes c
func (s *Server) readPump(c *Conn, ws *websocket.Conn) {
	defer s.registry.Remove(c)

	ws.SetReadLimit(s.opts.MaxMessageSize)
	ws.SetPongHandler(func(string) error {
		c.markAlive()
		return nil
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read error", "conn_id", c.ID, "error", err)
			}
			return
		}
		s.handleCommand(c, data)
	}
}

// handleCommand processes one inbound client message
func (s *Server) handleCommand(c *Conn, data []byte) {
	s.metrics.IncEventsReceived()

	cmd, err := events.DecodeCommand(data)
	if err != nil {
		s.logger.Warn("invalid message format", "conn_id", c.ID, "error", err)
		s.replyError(c, "Invalid message format")
		return
	}

	if cmd.Type == events.Ping {
		c.Send([]byte(events.PongLiteral))
		return
	}

	eventType := events.EventType(cmd.Type)
	if !eventType.IsEditingCommand() {
		s.logger.Warn("unsupported command", "conn_id", c.ID, "type", cmd.Type)
		s.replyError(c, "Unsupported command: "+cmd.Type)
		return
	}

	var editing events.EditingPayload
	if err := json.Unmarshal(cmd.Payload, &editing); err != nil || editing.ID == "" {
		s.replyError(c, "Editing command requires payload.id")
		return
	}

	if _, err := s.hub.Broadcast(eventType, cmd.Payload, c); err != nil {
		s.logger.Error("failed to relay command", "type", cmd.Type, "error", err)
	}
}

func (s *Server) replyError(c *Conn, message string) {
	sendEnvelope(c, events.Error, events.ErrorPayload{
		Message:   message,
		Timestamp: events.Timestamp(time.Now()),
	}, s.logger)
}

package daemon

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/pasosync/internal/events"
)

// transport is the subset of *websocket.Conn the write side needs
type transport interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

type frame struct {
	kind int
	data []byte
}

// Conn is a registry entry: one live socket, its bounded outbound queue and
// its liveness flag. The registry owns the flag; the socket lifecycle belongs
// to the transport.
type Conn struct {
	ID     string
	Remote string
	User   string // Display name from the handshake, may be empty

	ws        transport
	send      chan frame
	writeWait time.Duration
	alive     atomic.Bool
	writing   atomic.Bool // Set once the writer pump has been started

	mu        sync.Mutex // Protects closed and sends on the send channel
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

func newConn(id, remote string, ws transport, buffer int, writeWait time.Duration) *Conn {
	if buffer <= 0 {
		buffer = 1
	}
	c := &Conn{
		ID:        id,
		Remote:    remote,
		ws:        ws,
		send:      make(chan frame, buffer),
		writeWait: writeWait,
		done:      make(chan struct{}),
	}
	c.alive.Store(true)
	return c
}

// Open reports whether the connection still accepts writes
func (c *Conn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Alive reports the liveness flag as of the last heartbeat or pong
func (c *Conn) Alive() bool {
	return c.alive.Load()
}

// Send queues a text frame without blocking.
// Returns false if the connection is closed or its queue is full.
func (c *Conn) Send(data []byte) bool {
	return c.enqueue(frame{kind: websocket.TextMessage, data: data})
}

func (c *Conn) ping() bool {
	return c.enqueue(frame{kind: websocket.PingMessage})
}

func (c *Conn) markAlive() {
	c.alive.Store(true)
}

func (c *Conn) enqueue(f frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

// shut stops accepting frames and closes the queue. Safe to call repeatedly.
func (c *Conn) shut() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// close stops accepting frames and closes the socket. With a running writer,
// frames already queued are flushed first; the socket is closed once the
// writer exits or writeWait passes, whichever comes first. Safe to call
// repeatedly.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		c.shut()

		if !c.writing.Load() {
			_ = c.ws.Close()
			return
		}
		go func() {
			timer := time.NewTimer(c.writeWait)
			defer timer.Stop()
			select {
			case <-c.done:
			case <-timer.C:
			}
			_ = c.ws.Close()
		}()
	})
}

// startWriter runs the writer pump in its own goroutine
func (c *Conn) startWriter(logger *slog.Logger) {
	c.writing.Store(true)
	go c.writePump(logger)
}

// writePump drains the send queue onto the socket until the queue is closed
// or a write fails. A failed write closes the connection for good.
func (c *Conn) writePump(logger *slog.Logger) {
	defer close(c.done)

	for f := range c.send {
		deadline := time.Now().Add(c.writeWait)

		var err error
		if f.kind == websocket.PingMessage {
			err = c.ws.WriteControl(websocket.PingMessage, nil, deadline)
		} else {
			if err = c.ws.SetWriteDeadline(deadline); err == nil {
				err = c.ws.WriteMessage(f.kind, f.data)
			}
		}

		if err != nil {
			logger.Debug("write failed, dropping connection writer", "conn_id", c.ID, "error", err)
			c.shut()
			_ = c.ws.Close()
			return
		}
	}
}

// sendEnvelope encodes a one-off envelope and queues it for a single connection
func sendEnvelope(c *Conn, eventType events.EventType, payload any, logger *slog.Logger) bool {
	data, _, err := events.Encode(eventType, payload)
	if err != nil {
		logger.Error("failed to encode envelope", "event_type", eventType, "error", err)
		return false
	}
	return c.Send(data)
}

package daemon

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/pasosync/internal/events"
)

// fakeTransport records what the writer pump puts on the wire
type fakeTransport struct {
	mu     sync.Mutex
	texts  [][]byte
	pings  int
	closed bool
	fail   bool
}

func (f *fakeTransport) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeTransport) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.closed {
		return errors.New("write on broken transport")
	}
	f.texts = append(f.texts, append([]byte(nil), data...))
	return nil
}

func (f *fakeTransport) WriteControl(kind int, _ []byte, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.closed {
		return errors.New("write on broken transport")
	}
	if kind == websocket.PingMessage {
		f.pings++
	}
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) Texts() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.texts))
	copy(out, f.texts)
	return out
}

func (f *fakeTransport) Pings() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

func (f *fakeTransport) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestConn builds a connection whose writer is NOT started, so tests can
// inspect the queue directly with drain.
func newTestConn(t *testing.T, id string, buffer int) (*Conn, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{}
	return newConn(id, "test", ft, buffer, time.Second), ft
}

// drain pops every queued text frame without blocking
func drain(c *Conn) [][]byte {
	var out [][]byte
	for {
		select {
		case f, ok := <-c.send:
			if !ok {
				return out
			}
			if f.kind == websocket.TextMessage {
				out = append(out, f.data)
			}
		default:
			return out
		}
	}
}

func mustDecode(t *testing.T, data []byte) events.Envelope {
	t.Helper()
	env, heartbeat, err := events.Decode(data)
	if err != nil {
		t.Fatalf("Failed to decode %q: %v", data, err)
	}
	if heartbeat {
		t.Fatalf("Expected envelope, got heartbeat literal")
	}
	return env
}

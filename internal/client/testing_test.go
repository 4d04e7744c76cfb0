package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ============================================================================
// Manual Clock
// ============================================================================

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock only moves when Advance is called
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every timer that came due, in order
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	var rest []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.stopped || t.fired:
		case !t.at.After(c.now):
			t.fired = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Pending returns the delay until each live timer fires, soonest first
func (c *fakeClock) Pending() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []time.Duration
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.at.Sub(c.now))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ============================================================================
// Fake Transport
// ============================================================================

type readResult struct {
	data []byte
	err  error
}

// fakeSocket is fed by the test through deliver and drop
type fakeSocket struct {
	in        chan readResult
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written [][]byte
	failOut bool
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		in:   make(chan readResult, 16),
		done: make(chan struct{}),
	}
}

func (s *fakeSocket) ReadMessage() ([]byte, error) {
	select {
	case r := <-s.in:
		return r.data, r.err
	case <-s.done:
		return nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (s *fakeSocket) WriteMessage(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOut {
		return errors.New("broken pipe")
	}
	s.written = append(s.written, append([]byte(nil), data...))
	return nil
}

func (s *fakeSocket) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *fakeSocket) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *fakeSocket) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.written))
	for i, w := range s.written {
		out[i] = string(w)
	}
	return out
}

// deliver pushes one inbound frame
func (s *fakeSocket) deliver(data string) {
	s.in <- readResult{data: []byte(data)}
}

// drop ends the connection from the server side with code
func (s *fakeSocket) drop(code int) {
	s.in <- readResult{err: &websocket.CloseError{Code: code}}
}

// fakeDialer hands out queued sockets; with none queued it refuses
type fakeDialer struct {
	mu      sync.Mutex
	sockets []*fakeSocket
	dials   atomic.Int32
}

func (d *fakeDialer) queue(socks ...*fakeSocket) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sockets = append(d.sockets, socks...)
}

func (d *fakeDialer) Dial(_ context.Context, _ string) (Socket, error) {
	d.dials.Add(1)
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sockets) == 0 {
		return nil, errors.New("connection refused")
	}
	s := d.sockets[0]
	d.sockets = d.sockets[1:]
	return s, nil
}

func (d *fakeDialer) Dials() int {
	return int(d.dials.Load())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService wires a service to a manual clock and a fake dialer
func newTestService() (*Service, *fakeClock, *fakeDialer) {
	clock := newFakeClock()
	dialer := &fakeDialer{}
	svc := New(Options{
		URL:    "ws://test/ws",
		Logger: discardLogger(),
		Dialer: dialer,
		Clock:  clock,
	})
	return svc, clock, dialer
}

package daemon

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/pasosync/internal/events"
)

// ============================================================================
// Register / Remove
// ============================================================================

func TestRegistry_RegisterSendsConnectedToNewcomerOnly(t *testing.T) {
	r := NewRegistry(nil, discardLogger())

	first, _ := newTestConn(t, "a", 8)
	second, _ := newTestConn(t, "b", 8)

	assert.Equal(t, 1, r.Register(first))
	drain(first)

	assert.Equal(t, 2, r.Register(second))

	assert.Empty(t, drain(first), "existing client must not see the newcomer's greeting")

	frames := drain(second)
	require.Len(t, frames, 1)
	env := mustDecode(t, frames[0])
	assert.Equal(t, events.Connected, env.Type)
	assert.NotEmpty(t, env.EventID)

	var payload events.ConnectedPayload
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, "Successfully connected to sync server", payload.Message)
	assert.Equal(t, 2, payload.ClientCount)
	assert.NotEmpty(t, payload.Timestamp)
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(nil, discardLogger())
	c, ft := newTestConn(t, "a", 8)
	r.Register(c)

	assert.True(t, r.Remove(c))
	assert.False(t, r.Remove(c))
	assert.Equal(t, 0, r.Count())
	assert.True(t, ft.Closed())
	assert.False(t, c.Open())
	assert.False(t, c.Send([]byte("late")), "closed connection must refuse writes")
}

func TestRegistry_RemoveUnknownStillClosesTransport(t *testing.T) {
	r := NewRegistry(nil, discardLogger())
	c, ft := newTestConn(t, "stranger", 1)

	assert.False(t, r.Remove(c))
	assert.True(t, ft.Closed())
}

func TestRegistry_MetricsTrackCount(t *testing.T) {
	m := NewMetrics()
	r := NewRegistry(m, discardLogger())

	a, _ := newTestConn(t, "a", 4)
	b, _ := newTestConn(t, "b", 4)
	r.Register(a)
	r.Register(b)
	assert.Equal(t, int32(2), m.ConnectedClients.Load())

	r.Remove(a)
	assert.Equal(t, int32(1), m.ConnectedClients.Load())
}

// ============================================================================
// Heartbeat
// ============================================================================

func TestRegistry_HeartbeatPingsLiveConnections(t *testing.T) {
	r := NewRegistry(nil, discardLogger())
	c, _ := newTestConn(t, "a", 8)
	r.Register(c)
	drain(c)

	assert.Equal(t, 0, r.HeartbeatTick())
	assert.False(t, c.Alive(), "tick must clear the liveness flag")

	select {
	case f := <-c.send:
		assert.Equal(t, websocket.PingMessage, f.kind)
	default:
		t.Fatal("expected a queued ping")
	}
}

func TestRegistry_HeartbeatEvictsAfterOneMissedCycle(t *testing.T) {
	m := NewMetrics()
	r := NewRegistry(m, discardLogger())

	responsive, _ := newTestConn(t, "responsive", 8)
	silent, silentFT := newTestConn(t, "silent", 8)
	r.Register(responsive)
	r.Register(silent)

	assert.Equal(t, 0, r.HeartbeatTick())
	responsive.markAlive() // pong arrived

	assert.Equal(t, 1, r.HeartbeatTick())
	assert.Equal(t, 1, r.Count())
	assert.True(t, silentFT.Closed())
	assert.Equal(t, int64(1), m.Evictions.Load())

	// The evicted connection is not revisited on later ticks
	responsive.markAlive()
	assert.Equal(t, 0, r.HeartbeatTick())
	assert.Equal(t, int64(1), m.Evictions.Load())
}

func TestRegistry_EvictedConnectionGetsNoBroadcasts(t *testing.T) {
	r := NewRegistry(nil, discardLogger())
	h := NewHub(r, nil, discardLogger())

	c, _ := newTestConn(t, "silent", 8)
	r.Register(c)
	r.HeartbeatTick()
	r.HeartbeatTick()
	drain(c)

	d := h.Publish(events.TaskCreated, map[string]string{"_id": "t1"})
	assert.Equal(t, 0, d.Delivered)
	assert.Equal(t, 0, d.Failed)
	assert.Empty(t, drain(c))
}

func TestRegistry_HeartbeatDoesNotBlockOnFullQueue(t *testing.T) {
	r := NewRegistry(nil, discardLogger())
	c, _ := newTestConn(t, "slow", 1)
	r.Register(c) // CONNECTED fills the only slot

	done := make(chan int, 1)
	go func() { done <- r.HeartbeatTick() }()

	select {
	case n := <-done:
		assert.Equal(t, 0, n)
	case <-time.After(time.Second):
		t.Fatal("heartbeat tick blocked on a full queue")
	}
}

func TestRegistry_RunStopsOnContextCancel(t *testing.T) {
	r := NewRegistry(nil, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	r := NewRegistry(nil, discardLogger())
	var transports []*fakeTransport
	for _, id := range []string{"a", "b", "c"} {
		c, ft := newTestConn(t, id, 4)
		r.Register(c)
		transports = append(transports, ft)
	}

	r.CloseAll()

	assert.Equal(t, 0, r.Count())
	for _, ft := range transports {
		assert.True(t, ft.Closed())
	}
}

// ============================================================================
// Writer pump
// ============================================================================

func TestConn_CloseFlushesQueuedFrames(t *testing.T) {
	ft := &fakeTransport{}
	c := newConn("a", "test", ft, 8, time.Second)

	require.True(t, c.Send([]byte("one")))
	require.True(t, c.ping())
	require.True(t, c.Send([]byte("two")))
	c.startWriter(discardLogger())
	c.close()

	assert.False(t, c.Open())
	assert.False(t, c.Send([]byte("late")))

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("writer did not exit after close")
	}
	require.Eventually(t, ft.Closed, time.Second, 5*time.Millisecond)

	texts := ft.Texts()
	require.Len(t, texts, 2)
	assert.Equal(t, "one", string(texts[0]))
	assert.Equal(t, "two", string(texts[1]))
	assert.Equal(t, 1, ft.Pings())
}

func TestConn_CloseWithoutWriterClosesImmediately(t *testing.T) {
	c, ft := newTestConn(t, "a", 4)
	require.True(t, c.Send([]byte("never written")))

	c.close()

	assert.True(t, ft.Closed())
	assert.Empty(t, ft.Texts())
}

func TestConn_WritePumpStopsOnWriteError(t *testing.T) {
	ft := &fakeTransport{fail: true}
	c := newConn("a", "test", ft, 8, time.Second)
	c.startWriter(discardLogger())

	c.Send([]byte("doomed"))

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("writer did not exit after write failure")
	}
	assert.Empty(t, ft.Texts())
	assert.False(t, c.Open(), "a failed writer must mark the connection closed")
	assert.False(t, c.Send([]byte("after failure")))
}

func TestSendEnvelope_Unencodable(t *testing.T) {
	c, _ := newTestConn(t, "a", 2)
	ok := sendEnvelope(c, events.Error, map[string]any{"bad": make(chan int)}, discardLogger())
	assert.False(t, ok)
	assert.Empty(t, drain(c))

	// Sanity: a valid envelope still goes through
	assert.True(t, sendEnvelope(c, events.Error, events.ErrorPayload{Message: "x"}, discardLogger()))
	frames := drain(c)
	require.Len(t, frames, 1)
	assert.True(t, json.Valid(frames[0]))
}

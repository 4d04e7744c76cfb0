package daemon

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/pasosync/internal/events"
)

// ============================================================================
// Test Helpers
// ============================================================================

func startTestServer(t *testing.T, opts Options) (*Server, string) {
	t.Helper()
	srv := NewServer(opts, discardLogger())
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http")
}

// dialClient connects and consumes the CONNECTED greeting
func dialClient(t *testing.T, url string) (*websocket.Conn, events.ConnectedPayload) {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	env := readEnvelope(t, ws)
	require.Equal(t, events.Connected, env.Type)

	var payload events.ConnectedPayload
	require.NoError(t, env.DecodePayload(&payload))
	return ws, payload
}

func readRaw(t *testing.T, ws *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	return data
}

func readEnvelope(t *testing.T, ws *websocket.Conn) events.Envelope {
	t.Helper()
	return mustDecode(t, readRaw(t, ws))
}

func writeJSON(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, data))
}

func waitForCount(t *testing.T, r *Registry, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return r.Count() == want },
		2*time.Second, 10*time.Millisecond, "expected %d registered clients", want)
}

// ============================================================================
// Server Creation Tests
// ============================================================================

func TestNewServer_AppliesDefaults(t *testing.T) {
	srv := NewServer(Options{}, nil)

	assert.Equal(t, DefaultOptions(), srv.opts)
	assert.NotNil(t, srv.Hub())
	assert.NotNil(t, srv.Registry())
	assert.NotNil(t, srv.Metrics())
}

func TestNewServer_KeepsExplicitOptions(t *testing.T) {
	srv := NewServer(Options{HeartbeatInterval: time.Second, ClientBuffer: 3}, discardLogger())

	assert.Equal(t, time.Second, srv.opts.HeartbeatInterval)
	assert.Equal(t, 3, srv.opts.ClientBuffer)
	assert.Equal(t, DefaultOptions().WriteWait, srv.opts.WriteWait)
}

// ============================================================================
// Client Connection Tests
// ============================================================================

func TestClientConnection_ReceivesConnected(t *testing.T) {
	srv, url := startTestServer(t, Options{})

	_, first := dialClient(t, url)
	assert.Equal(t, 1, first.ClientCount)
	assert.Equal(t, "Successfully connected to sync server", first.Message)

	_, second := dialClient(t, url)
	assert.Equal(t, 2, second.ClientCount)
	assert.Equal(t, 2, srv.Registry().Count())
}

func TestClientConnection_DisconnectUnregisters(t *testing.T) {
	srv, url := startTestServer(t, Options{})

	ws, _ := dialClient(t, url)
	waitForCount(t, srv.Registry(), 1)

	require.NoError(t, ws.Close())
	waitForCount(t, srv.Registry(), 0)
}

func TestClientConnection_PingGetsPongLiteral(t *testing.T) {
	_, url := startTestServer(t, Options{})
	ws, _ := dialClient(t, url)

	writeJSON(t, ws, map[string]string{"type": "ping"})

	data := readRaw(t, ws)
	assert.Equal(t, "pong", string(data))
	assert.True(t, events.IsPong(data))
}

func TestClientConnection_InvalidJSONGetsError(t *testing.T) {
	srv, url := startTestServer(t, Options{})
	ws, _ := dialClient(t, url)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))

	env := readEnvelope(t, ws)
	assert.Equal(t, events.Error, env.Type)
	var payload events.ErrorPayload
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, "Invalid message format", payload.Message)

	// The connection survives a bad message
	assert.Equal(t, 1, srv.Registry().Count())
	writeJSON(t, ws, map[string]string{"type": "ping"})
	assert.Equal(t, "pong", string(readRaw(t, ws)))
}

func TestClientConnection_UnsupportedCommandGetsError(t *testing.T) {
	_, url := startTestServer(t, Options{})
	ws, _ := dialClient(t, url)
	other, _ := dialClient(t, url)

	// Clients may not forge change events
	writeJSON(t, ws, map[string]any{"type": "TASK_DELETED", "payload": map[string]string{"_id": "t1"}})

	env := readEnvelope(t, ws)
	assert.Equal(t, events.Error, env.Type)
	var payload events.ErrorPayload
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, "Unsupported command: TASK_DELETED", payload.Message)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "forged event must not reach other clients")
}

func TestClientConnection_EditingCommandWithoutID(t *testing.T) {
	_, url := startTestServer(t, Options{})
	ws, _ := dialClient(t, url)

	writeJSON(t, ws, map[string]any{"type": "START_EDITING_TASK", "payload": map[string]string{}})

	env := readEnvelope(t, ws)
	assert.Equal(t, events.Error, env.Type)
}

// ============================================================================
// Broadcast Tests
// ============================================================================

func TestBroadcast_EditingRelayExcludesSender(t *testing.T) {
	srv, url := startTestServer(t, Options{})
	sender, _ := dialClient(t, url)
	a, _ := dialClient(t, url)
	b, _ := dialClient(t, url)
	waitForCount(t, srv.Registry(), 3)

	writeJSON(t, sender, map[string]any{"type": "START_EDITING_TASK", "payload": map[string]string{"id": "t1"}})

	envA := readEnvelope(t, a)
	envB := readEnvelope(t, b)
	assert.Equal(t, events.StartEditingTask, envA.Type)
	assert.Equal(t, envA.EventID, envB.EventID)
	assert.JSONEq(t, `{"id":"t1"}`, string(envA.Payload))

	// The sender's next frame is its own pong, not the relay
	writeJSON(t, sender, map[string]string{"type": "ping"})
	assert.Equal(t, "pong", string(readRaw(t, sender)))
}

func TestBroadcast_PublishReachesAllClients(t *testing.T) {
	srv, url := startTestServer(t, Options{})
	a, _ := dialClient(t, url)
	b, _ := dialClient(t, url)
	waitForCount(t, srv.Registry(), 2)

	d := srv.Hub().Publish(events.ProjectCreated, map[string]string{"_id": "p1", "name": "Alpha"})
	assert.Equal(t, 2, d.Delivered)

	for _, ws := range []*websocket.Conn{a, b} {
		env := readEnvelope(t, ws)
		assert.Equal(t, events.ProjectCreated, env.Type)
		assert.Equal(t, d.EventID, env.EventID)
	}
}

// ============================================================================
// Heartbeat / Shutdown Tests
// ============================================================================

func TestHeartbeat_ResponsiveClientSurvives(t *testing.T) {
	srv, url := startTestServer(t, Options{})
	ws, _ := dialClient(t, url)
	waitForCount(t, srv.Registry(), 1)

	// gorilla's default ping handler answers pings, but only while reading
	go func() {
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 3; i++ {
		srv.Registry().HeartbeatTick()
		conn := srv.Registry().Snapshot()[0]
		require.Eventually(t, conn.Alive, 2*time.Second, 5*time.Millisecond)
	}
	assert.Equal(t, 1, srv.Registry().Count())
}

func TestShutdown_ClosesClients(t *testing.T) {
	srv, url := startTestServer(t, Options{})
	ws, _ := dialClient(t, url)
	waitForCount(t, srv.Registry(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, 0, srv.Registry().Count())
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)

	srv.Shutdown() // second call is a no-op
}

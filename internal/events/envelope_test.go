package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

// ============================================================================
// Encode Tests
// ============================================================================

func TestEncode_BuildsEnvelope(t *testing.T) {
	fixClock(t, time.Date(2024, 3, 1, 12, 30, 0, 123_000_000, time.UTC))

	data, env, err := Encode(TaskCreated, map[string]any{"_id": "t1", "title": "Write docs"})
	require.NoError(t, err)

	assert.Equal(t, TaskCreated, env.Type)
	assert.Equal(t, "2024-03-01T12:30:00.123Z", env.Timestamp)
	assert.NotEmpty(t, env.EventID)
	assert.JSONEq(t, `{"_id":"t1","title":"Write docs"}`, string(env.Payload))

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "TASK_CREATED", wire["type"])
	assert.Equal(t, env.EventID, wire["eventId"])
	assert.Equal(t, env.Timestamp, wire["timestamp"])
}

func TestEncode_FreshEventIDPerCall(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		_, env, err := Encode(ProjectUpdated, map[string]string{"_id": "p1"})
		require.NoError(t, err)
		assert.False(t, seen[env.EventID], "duplicate event id %s", env.EventID)
		seen[env.EventID] = true
	}
}

func TestEncode_UnencodablePayload(t *testing.T) {
	_, _, err := Encode(TaskUpdated, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

// ============================================================================
// Decode Tests
// ============================================================================

func TestDecode_RoundTrip(t *testing.T) {
	data, sent, err := Encode(ProjectDeleted, map[string]string{"_id": "p1", "name": "Apollo"})
	require.NoError(t, err)

	got, heartbeat, err := Decode(data)
	require.NoError(t, err)
	assert.False(t, heartbeat)
	assert.Equal(t, sent.EventID, got.EventID)
	assert.Equal(t, sent.Timestamp, got.Timestamp)

	var payload struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	require.NoError(t, got.DecodePayload(&payload))
	assert.Equal(t, "p1", payload.ID)
	assert.Equal(t, "Apollo", payload.Name)
}

func TestDecode_PongIsHeartbeatNotError(t *testing.T) {
	for _, raw := range []string{"pong", " pong\n"} {
		env, heartbeat, err := Decode([]byte(raw))
		assert.NoError(t, err)
		assert.True(t, heartbeat)
		assert.Empty(t, env.Type)
	}
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"not json", `{"type":`, "malformed structure"},
		{"array", `[1,2]`, "malformed structure"},
		{"missing type", `{"payload":{"_id":"x"}}`, "missing type"},
		{"missing payload", `{"type":"TASK_CREATED"}`, "missing payload"},
		{"null payload", `{"type":"TASK_CREATED","payload":null}`, "missing payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, heartbeat, err := Decode([]byte(tt.input))
			assert.False(t, heartbeat)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecode))

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.reason, de.Reason)
		})
	}
}

// ============================================================================
// Command Tests
// ============================================================================

func TestEncodeCommand_PingHasNoPayload(t *testing.T) {
	data, err := EncodeCommand(Ping, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ping"}`, string(data))
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, Ping, cmd.Type)

	data, err := EncodeCommand(string(StartEditingTask), EditingPayload{ID: "t9"})
	require.NoError(t, err)
	cmd, err = DecodeCommand(data)
	require.NoError(t, err)
	assert.Equal(t, "START_EDITING_TASK", cmd.Type)
	assert.JSONEq(t, `{"id":"t9"}`, string(cmd.Payload))

	_, err = DecodeCommand([]byte(`{"type":"START_EDITING_TASK"}`))
	assert.ErrorIs(t, err, ErrDecode)

	_, err = DecodeCommand([]byte(`not json`))
	assert.ErrorIs(t, err, ErrDecode)
}

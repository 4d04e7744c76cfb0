package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// TimestampLayout is ISO-8601 with millisecond precision in UTC
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Envelope is the unit on the wire: one event, its payload, when the server
// broadcast it, and an id shared by every recipient of that broadcast.
type Envelope struct {
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
	EventID   string          `json:"eventId"`
}

// Command is what clients send to the server. Ping carries no payload.
type Command struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// now is swapped in tests that need a fixed clock
var now = time.Now

// NewEventID returns a sortable, collision-resistant id: a millisecond
// timestamp followed by random entropy.
func NewEventID() string {
	return ulid.Make().String()
}

// Timestamp formats t the way envelopes carry it
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Encode builds a self-contained envelope with a fresh event id and the
// current time, and returns it with its serialized form.
func Encode(eventType EventType, payload any) ([]byte, Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, Envelope{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	env := Envelope{
		Type:      eventType,
		Payload:   raw,
		Timestamp: Timestamp(now()),
		EventID:   NewEventID(),
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, Envelope{}, fmt.Errorf("failed to encode %s envelope: %w", eventType, err)
	}
	return data, env, nil
}

// IsPong reports whether data is the heartbeat reply literal
func IsPong(data []byte) bool {
	return string(bytes.TrimSpace(data)) == PongLiteral
}

// Decode parses an inbound server message. The pong literal is recognized
// before any structural decoding and reported through heartbeat with a nil
// error. A message without a type or payload is a *DecodeError.
func Decode(data []byte) (env Envelope, heartbeat bool, err error) {
	if IsPong(data) {
		return Envelope{}, true, nil
	}

	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, false, &DecodeError{Reason: "malformed structure", Err: err}
	}
	if env.Type == "" {
		return Envelope{}, false, &DecodeError{Reason: "missing type"}
	}
	if isEmptyJSON(env.Payload) {
		return Envelope{}, false, &DecodeError{Reason: "missing payload"}
	}
	return env, false, nil
}

// EncodeCommand serializes a client command. A nil payload is omitted.
func EncodeCommand(commandType string, payload any) ([]byte, error) {
	cmd := Command{Type: commandType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", commandType, err)
		}
		cmd.Payload = raw
	}
	return json.Marshal(cmd)
}

// DecodeCommand parses a client command. Ping is accepted without a payload;
// every other command needs both a type and a payload.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, &DecodeError{Reason: "malformed structure", Err: err}
	}
	if cmd.Type == "" {
		return Command{}, &DecodeError{Reason: "missing type"}
	}
	if cmd.Type == Ping {
		return cmd, nil
	}
	if isEmptyJSON(cmd.Payload) {
		return Command{}, &DecodeError{Reason: "missing payload"}
	}
	return cmd, nil
}

// DecodePayload unmarshals the envelope payload into v
func (e Envelope) DecodePayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return &DecodeError{Reason: fmt.Sprintf("bad %s payload", e.Type), Err: err}
	}
	return nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

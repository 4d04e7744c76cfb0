// Package events is the wire contract shared by the sync server and its clients:
// the closed set of event types, the envelope that carries them, and the codec.
package events

// EventType indicates what kind of change or command a message carries
type EventType string

const (
	ProjectCreated EventType = "PROJECT_CREATED"
	ProjectUpdated EventType = "PROJECT_UPDATED"
	ProjectDeleted EventType = "PROJECT_DELETED"

	TaskCreated EventType = "TASK_CREATED"
	TaskUpdated EventType = "TASK_UPDATED"
	TaskDeleted EventType = "TASK_DELETED"

	StartEditingProject EventType = "START_EDITING_PROJECT"
	StopEditingProject  EventType = "STOP_EDITING_PROJECT"
	StartEditingTask    EventType = "START_EDITING_TASK"
	StopEditingTask     EventType = "STOP_EDITING_TASK"

	// System events, never produced by the change bridge
	Connected EventType = "CONNECTED"
	Error     EventType = "ERROR"
)

// Ping is the command type a client sends as its application-level heartbeat.
// It is not part of the EventType enumeration and is never broadcast.
const Ping = "ping"

// UserHeader carries the client's display name on the websocket handshake
const UserHeader = "X-Pasosync-User"

// PongLiteral is the raw text frame the server sends in reply to a Ping.
// It is not a JSON envelope.
const PongLiteral = "pong"

// AllEventTypes lists every member of the enumeration in a stable order
var AllEventTypes = []EventType{
	ProjectCreated, ProjectUpdated, ProjectDeleted,
	TaskCreated, TaskUpdated, TaskDeleted,
	StartEditingProject, StopEditingProject, StartEditingTask, StopEditingTask,
	Connected, Error,
}

// Valid reports whether t is a member of the enumeration
func (t EventType) Valid() bool {
	for _, known := range AllEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsSystem reports whether t is a server-originated system event
func (t EventType) IsSystem() bool {
	return t == Connected || t == Error
}

// IsEditingCommand reports whether t is one of the presence commands clients
// send and the server rebroadcasts to everybody else
func (t EventType) IsEditingCommand() bool {
	switch t {
	case StartEditingProject, StopEditingProject, StartEditingTask, StopEditingTask:
		return true
	}
	return false
}

// IsDeletion reports whether t announces a removed entity
func (t EventType) IsDeletion() bool {
	return t == ProjectDeleted || t == TaskDeleted
}

func (t EventType) String() string {
	return string(t)
}

// ConnectedPayload is sent to a freshly registered connection
type ConnectedPayload struct {
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	ClientCount int    `json:"clientCount"`
}

// ErrorPayload is sent to a client whose command could not be processed
type ErrorPayload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// EditingPayload is the body of the *_EDITING_* commands
type EditingPayload struct {
	ID string `json:"id"`
}

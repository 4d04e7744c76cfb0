package events

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

var (
	// ErrDecode matches every *DecodeError
	ErrDecode = errors.New("malformed message")

	// ErrTransport marks socket-level failures
	ErrTransport = errors.New("transport failure")

	// ErrReconnectExhausted is reported once the backoff ceiling is reached
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

	// ErrNotConnected is returned by sends issued while the socket is down.
	// The message is dropped, not queued.
	ErrNotConnected = errors.New("not connected")
)

// DecodeError describes a wire message that could not be parsed
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDecode) match any DecodeError
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// BroadcastPartialFailure reports recipients a broadcast could not reach.
// It is informational: the broadcast itself still succeeded for the rest.
type BroadcastPartialFailure struct {
	EventType EventType
	EventID   string
	Delivered int
	Failed    int
}

func (e *BroadcastPartialFailure) Error() string {
	return fmt.Sprintf("broadcast %s (%s): %d delivered, %d unreachable",
		e.EventType, e.EventID, e.Delivered, e.Failed)
}

// ErrorCode classifies transport failures for humans
type ErrorCode int

const (
	ErrServerUnreachable ErrorCode = iota
	ErrConnectionRefused
	ErrPermission
	ErrConnectionLost
)

// TransportError is a structured socket error with a hint for the operator
type TransportError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match any TransportError
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ClassifyTransportError maps common dial and socket errors to TransportError.
func ClassifyTransportError(err error) *TransportError {
	if err == nil {
		return nil
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ECONNREFUSED {
		return &TransportError{
			Code:    ErrConnectionRefused,
			Message: "Connection refused",
			Hint:    "Is the server running? Start it with: pasosync serve",
			Err:     err,
		}
	}

	if os.IsPermission(err) {
		return &TransportError{
			Code:    ErrPermission,
			Message: "Permission denied",
			Err:     err,
		}
	}

	if errors.As(err, &errno) && (errno == syscall.ECONNRESET || errno == syscall.EPIPE) {
		return &TransportError{
			Code:    ErrConnectionLost,
			Message: "Connection lost",
			Err:     err,
		}
	}

	return &TransportError{
		Code:    ErrServerUnreachable,
		Message: "Server unreachable",
		Hint:    "Check client.url in the config",
		Err:     err,
	}
}

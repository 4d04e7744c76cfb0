package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Socket is one open transport connection
type Socket interface {
	// ReadMessage blocks until a text message arrives or the socket fails
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	// Close performs a clean close
	Close() error
}

// Dialer opens sockets
type Dialer interface {
	Dial(ctx context.Context, url string) (Socket, error)
}

// WebsocketDialer dials with gorilla/websocket
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
	WriteWait        time.Duration
	Header           http.Header // Sent with the handshake request
}

// Dial opens a websocket to url
func (d WebsocketDialer) Dial(ctx context.Context, url string) (Socket, error) {
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, d.Header)
	if err != nil {
		return nil, err
	}

	writeWait := d.WriteWait
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}
	return &wsSocket{conn: conn, writeWait: writeWait}, nil
}

// wsSocket serializes writes; gorilla allows one concurrent writer
type wsSocket struct {
	conn      *websocket.Conn
	writeWait time.Duration
	writeMu   sync.Mutex
}

func (s *wsSocket) ReadMessage() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

func (s *wsSocket) WriteMessage(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSocket) Close() error {
	s.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.writeWait))
	s.writeMu.Unlock()

	return s.conn.Close()
}

// CloseCode extracts the close code from a read error. Anything that is not
// a close frame is an abnormal closure.
func CloseCode(err error) int {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return websocket.CloseAbnormalClosure
}

// IsCleanClose reports whether a close code ends the session without reconnecting
func IsCleanClose(code int) bool {
	return code == websocket.CloseNormalClosure
}

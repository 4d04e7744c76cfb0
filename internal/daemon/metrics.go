package daemon

import (
	"sync/atomic"
	"time"
)

// Metrics tracks sync server statistics using atomic operations for thread-safety
type Metrics struct {
	EventsSent       atomic.Int64
	EventsReceived   atomic.Int64
	Broadcasts       atomic.Int64
	SendFailures     atomic.Int64
	Evictions        atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncEventsSent increments the per-recipient delivery counter
func (m *Metrics) IncEventsSent() {
	m.EventsSent.Add(1)
}

// IncEventsReceived increments the inbound command counter
func (m *Metrics) IncEventsReceived() {
	m.EventsReceived.Add(1)
}

// IncBroadcasts increments the broadcast counter
func (m *Metrics) IncBroadcasts() {
	m.Broadcasts.Add(1)
}

// IncSendFailures increments the unreachable-recipient counter
func (m *Metrics) IncSendFailures() {
	m.SendFailures.Add(1)
}

// IncEvictions increments the heartbeat eviction counter
func (m *Metrics) IncEvictions() {
	m.Evictions.Add(1)
}

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsSent       int64     `json:"events_sent"`
	EventsReceived   int64     `json:"events_received"`
	Broadcasts       int64     `json:"broadcasts"`
	SendFailures     int64     `json:"send_failures"`
	Evictions        int64     `json:"evictions"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsSent:       m.EventsSent.Load(),
		EventsReceived:   m.EventsReceived.Load(),
		Broadcasts:       m.Broadcasts.Load(),
		SendFailures:     m.SendFailures.Load(),
		Evictions:        m.Evictions.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).String(),
	}
}

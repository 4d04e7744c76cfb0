package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/thenoetrevino/pasosync/internal/events"
)

// Registry tracks live connections and evicts the ones that stop answering
// heartbeats.
type Registry struct {
	conns   map[*Conn]struct{}
	mu      sync.RWMutex
	metrics *Metrics
	logger  *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(metrics *Metrics, logger *slog.Logger) *Registry {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		conns:   make(map[*Conn]struct{}),
		metrics: metrics,
		logger:  logger,
	}
}

// Register admits c and sends it, and only it, a CONNECTED envelope carrying
// the live count including c. Returns that count.
func (r *Registry) Register(c *Conn) int {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	count := len(r.conns)
	r.mu.Unlock()

	r.metrics.SetConnectedClients(int32(count))

	sendEnvelope(c, events.Connected, events.ConnectedPayload{
		Message:     "Successfully connected to sync server",
		Timestamp:   events.Timestamp(time.Now()),
		ClientCount: count,
	}, r.logger)

	r.logger.Info("client connected", "conn_id", c.ID, "remote", c.Remote, "user", c.User, "clients", count)
	return count
}

// Remove drops c and force-closes its transport.
// Returns false if c was not registered, which makes repeated calls harmless.
func (r *Registry) Remove(c *Conn) bool {
	r.mu.Lock()
	_, ok := r.conns[c]
	delete(r.conns, c)
	count := len(r.conns)
	r.mu.Unlock()

	c.close()
	if !ok {
		return false
	}

	r.metrics.SetConnectedClients(int32(count))
	r.logger.Info("client disconnected", "conn_id", c.ID, "user", c.User, "clients", count)
	return true
}

// HeartbeatTick evicts every connection that did not answer the previous
// tick's ping, and pings the rest. A connection is therefore declared dead
// after one missed cycle. Pings are queued, never written inline, so a slow
// client cannot stall the tick. Returns the number evicted.
func (r *Registry) HeartbeatTick() int {
	evicted := 0
	for _, c := range r.Snapshot() {
		if !c.alive.Swap(false) {
			if r.Remove(c) {
				evicted++
				r.metrics.IncEvictions()
				r.logger.Warn("evicting unresponsive client", "conn_id", c.ID, "user", c.User)
			}
			continue
		}

		if !c.ping() {
			r.logger.Debug("ping not queued (queue full or closed)", "conn_id", c.ID)
		}
	}
	return evicted
}

// Run calls HeartbeatTick every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.HeartbeatTick(); n > 0 {
				r.logger.Info("heartbeat evicted clients", "evicted", n, "clients", r.Count())
			}
		}
	}
}

// Snapshot returns the current members. Callers iterate the copy, so
// concurrent removals never invalidate an iteration.
func (r *Registry) Snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// Count returns the number of registered connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll removes and closes every connection
func (r *Registry) CloseAll() {
	for _, c := range r.Snapshot() {
		r.Remove(c)
	}
}

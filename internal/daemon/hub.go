package daemon

import (
	"log/slog"

	"github.com/thenoetrevino/pasosync/internal/events"
)

// Delivery is the outcome of one broadcast
type Delivery struct {
	EventID   string
	Delivered int
	Failed    int
}

// Hub fans one envelope out to every open registered connection
type Hub struct {
	registry *Registry
	metrics  *Metrics
	logger   *slog.Logger
}

// NewHub creates a hub over registry
func NewHub(registry *Registry, metrics *Metrics, logger *slog.Logger) *Hub {
	if metrics == nil {
		metrics = registry.metrics
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{registry: registry, metrics: metrics, logger: logger}
}

// Broadcast encodes one envelope and queues the identical bytes for every
// open connection except exclude (which may be nil). Delivery is best-effort
// per recipient: a full or closed queue is counted as a failure and skipped.
// The returned error is non-nil only if the payload cannot be encoded.
func (h *Hub) Broadcast(eventType events.EventType, payload any, exclude *Conn) (Delivery, error) {
	data, env, err := events.Encode(eventType, payload)
	if err != nil {
		return Delivery{}, err
	}

	d := Delivery{EventID: env.EventID}
	for _, c := range h.registry.Snapshot() {
		if c == exclude || !c.Open() {
			continue
		}
		if c.Send(data) {
			d.Delivered++
			h.metrics.IncEventsSent()
		} else {
			d.Failed++
			h.metrics.IncSendFailures()
		}
	}
	h.metrics.IncBroadcasts()

	if d.Failed > 0 {
		h.logger.Warn("broadcast partially failed", "error", &events.BroadcastPartialFailure{
			EventType: eventType,
			EventID:   env.EventID,
			Delivered: d.Delivered,
			Failed:    d.Failed,
		})
	}
	h.logger.Debug("broadcast",
		"event_type", eventType,
		"event_id", env.EventID,
		"delivered", d.Delivered,
		"excluded", exclude != nil)

	return d, nil
}

// Publish broadcasts to everybody. Encoding failures are logged and reported
// as an empty delivery.
func (h *Hub) Publish(eventType events.EventType, payload any) Delivery {
	d, err := h.Broadcast(eventType, payload, nil)
	if err != nil {
		h.logger.Error("failed to publish event", "event_type", eventType, "error", err)
	}
	return d
}

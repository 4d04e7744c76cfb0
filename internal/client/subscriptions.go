package client

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/thenoetrevino/pasosync/internal/events"
)

// Handler receives one routed envelope
type Handler func(env events.Envelope)

type subscription struct {
	handler Handler
	active  atomic.Bool
}

// Subscriptions routes envelopes to handlers by event type, in subscription
// order, and drops an exact repeat of the last handled envelope.
type Subscriptions struct {
	mu          sync.Mutex
	byType      map[events.EventType][]*subscription
	lastEventID string
	logger      *slog.Logger
}

// NewSubscriptions creates an empty registry
func NewSubscriptions(logger *slog.Logger) *Subscriptions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriptions{
		byType: make(map[events.EventType][]*subscription),
		logger: logger,
	}
}

// Subscribe appends h to the handlers for eventType. The returned function
// removes exactly this subscription; it takes effect immediately, even for a
// dispatch already in progress, and is safe to call more than once.
func (s *Subscriptions) Subscribe(eventType events.EventType, h Handler) (unsubscribe func()) {
	sub := &subscription{handler: h}
	sub.active.Store(true)

	s.mu.Lock()
	s.byType[eventType] = append(s.byType[eventType], sub)
	s.mu.Unlock()

	return func() {
		if !sub.active.Swap(false) {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		current := s.byType[eventType]
		kept := make([]*subscription, 0, len(current))
		for _, other := range current {
			if other != sub {
				kept = append(kept, other)
			}
		}
		if len(kept) == 0 {
			delete(s.byType, eventType)
		} else {
			s.byType[eventType] = kept
		}
	}
}

// Dispatch delivers env to every current handler of its type and returns how
// many ran. An envelope whose eventId equals the last handled one is dropped.
// A panicking handler is logged and does not stop the others.
func (s *Subscriptions) Dispatch(env events.Envelope) int {
	s.mu.Lock()
	if env.EventID != "" && env.EventID == s.lastEventID {
		s.mu.Unlock()
		s.logger.Debug("dropping repeated event", "event_type", env.Type, "event_id", env.EventID)
		return 0
	}
	s.lastEventID = env.EventID
	subs := append([]*subscription(nil), s.byType[env.Type]...)
	s.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		if !sub.active.Load() {
			continue
		}
		if err := s.invoke(sub.handler, env); err != nil {
			s.logger.Error("subscriber failed", "event_type", env.Type, "event_id", env.EventID, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// Count returns the number of handlers subscribed to eventType
func (s *Subscriptions) Count(eventType events.EventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byType[eventType])
}

// LastEventID returns the id of the last handled envelope
func (s *Subscriptions) LastEventID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEventID
}

func (s *Subscriptions) invoke(h Handler, env events.Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	h(env)
	return nil
}

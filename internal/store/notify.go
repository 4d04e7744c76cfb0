package store

import (
	"fmt"

	"github.com/thenoetrevino/pasosync/internal/events"
	"github.com/thenoetrevino/pasosync/internal/models"
	"github.com/thenoetrevino/pasosync/internal/notifications"
)

// notifyChange raises a success notification for this client's own write
// (the id matches the last-action marker) and an info notification otherwise.
// The data mutation has already been applied either way.
func (s *Store) notifyChange(kind models.EntityKind, t events.EventType, id, label string) {
	if s.lastAction.Matches(id) {
		s.notify(kind, notifications.Success, fmt.Sprintf("%s %q %s", kind, label, verb(t)))
		return
	}
	s.notify(kind, notifications.Info, fmt.Sprintf("%s %q was %s by another user", kind, label, verb(t)))
}

// notify stores n newest first, keeping at most limit per kind
func (s *Store) notify(kind models.EntityKind, severity notifications.Severity, message string) {
	n := notifications.Notification{
		Severity: severity,
		Message:  message,
		Time:     s.clock.Now(),
	}

	s.mu.Lock()
	list := append([]notifications.Notification{n}, s.notices[kind]...)
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	s.notices[kind] = list
	s.mu.Unlock()

	s.logger.Debug("notification", "kind", kind, "severity", severity, "message", message)
	if s.onNotify != nil {
		s.onNotify(kind, n)
	}
}

// Notifications returns the notifications for kind, newest first
func (s *Store) Notifications(kind models.EntityKind) []notifications.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]notifications.Notification, len(s.notices[kind]))
	copy(out, s.notices[kind])
	return out
}

// ClearNotifications drops every notification for kind
func (s *Store) ClearNotifications(kind models.EntityKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notices, kind)
}

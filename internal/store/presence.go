package store

import (
	"fmt"
	"sort"

	"github.com/thenoetrevino/pasosync/internal/events"
	"github.com/thenoetrevino/pasosync/internal/models"
)

func editingCommand(kind models.EntityKind, start bool) (events.EventType, error) {
	switch {
	case kind == models.EntityProject && start:
		return events.StartEditingProject, nil
	case kind == models.EntityProject:
		return events.StopEditingProject, nil
	case kind == models.EntityTask && start:
		return events.StartEditingTask, nil
	case kind == models.EntityTask:
		return events.StopEditingTask, nil
	}
	return "", fmt.Errorf("no editing command for %q", kind)
}

// StartEditing tells other clients this one is editing id. Delivery is
// at-most-once: while disconnected the command is dropped and an error
// wrapping events.ErrNotConnected is returned.
func (s *Store) StartEditing(kind models.EntityKind, id string) error {
	return s.sendEditing(kind, id, true)
}

// StopEditing tells other clients this one stopped editing id
func (s *Store) StopEditing(kind models.EntityKind, id string) error {
	return s.sendEditing(kind, id, false)
}

func (s *Store) sendEditing(kind models.EntityKind, id string, start bool) error {
	t, err := editingCommand(kind, start)
	if err != nil {
		return err
	}
	return s.socket.Send(string(t), events.EditingPayload{ID: id})
}

// IsBeingEdited reports whether another client announced it is editing id
func (s *Store) IsBeingEdited(kind models.EntityKind, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.editing[kind][id]
	return ok
}

// BeingEdited lists the ids of kind other clients are editing
func (s *Store) BeingEdited(kind models.EntityKind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.editing[kind]))
	for id := range s.editing[kind] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

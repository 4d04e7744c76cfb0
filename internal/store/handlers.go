package store

import (
	"github.com/thenoetrevino/pasosync/internal/client"
	"github.com/thenoetrevino/pasosync/internal/events"
	"github.com/thenoetrevino/pasosync/internal/models"
)

func verb(t events.EventType) string {
	switch t {
	case events.ProjectCreated, events.TaskCreated:
		return "created"
	case events.ProjectDeleted, events.TaskDeleted:
		return "deleted"
	default:
		return "updated"
	}
}

func (s *Store) onProjectSaved(t events.EventType) client.Handler {
	return func(env events.Envelope) {
		var p models.Project
		if err := env.DecodePayload(&p); err != nil || p.ID == "" {
			s.logger.Warn("ignoring project event", "event_type", t, "event_id", env.EventID, "error", err)
			return
		}

		s.mu.Lock()
		s.putProjectLocked(&p)
		s.mu.Unlock()

		s.notifyChange(models.EntityProject, t, p.ID, p.Name)
	}
}

func (s *Store) onProjectDeleted(env events.Envelope) {
	var ref models.ProjectRef
	if err := env.DecodePayload(&ref); err != nil || ref.ID == "" {
		s.logger.Warn("ignoring project event", "event_type", env.Type, "event_id", env.EventID, "error", err)
		return
	}

	s.mu.Lock()
	wasCurrent := s.removeProjectLocked(ref.ID)
	s.mu.Unlock()

	if wasCurrent {
		s.logger.Info("viewed project was deleted", "project_id", ref.ID)
		s.navigator.ToProjectList()
	}
	s.notifyChange(models.EntityProject, events.ProjectDeleted, ref.ID, ref.Name)
}

func (s *Store) onTaskSaved(t events.EventType) client.Handler {
	return func(env events.Envelope) {
		var tk models.Task
		if err := env.DecodePayload(&tk); err != nil || tk.ID == "" {
			s.logger.Warn("ignoring task event", "event_type", t, "event_id", env.EventID, "error", err)
			return
		}

		s.mu.Lock()
		s.putTaskLocked(&tk)
		s.mu.Unlock()

		s.notifyChange(models.EntityTask, t, tk.ID, tk.Title)
	}
}

func (s *Store) onTaskDeleted(env events.Envelope) {
	var ref models.TaskRef
	if err := env.DecodePayload(&ref); err != nil || ref.ID == "" {
		s.logger.Warn("ignoring task event", "event_type", env.Type, "event_id", env.EventID, "error", err)
		return
	}

	s.mu.Lock()
	s.removeTaskLocked(ref.ID)
	s.mu.Unlock()

	s.notifyChange(models.EntityTask, events.TaskDeleted, ref.ID, ref.Title)
}

func (s *Store) onEditing(kind models.EntityKind, start bool) client.Handler {
	return func(env events.Envelope) {
		var p events.EditingPayload
		if err := env.DecodePayload(&p); err != nil || p.ID == "" {
			s.logger.Warn("ignoring editing event", "event_type", env.Type, "error", err)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if start {
			s.editing[kind][p.ID] = struct{}{}
		} else {
			delete(s.editing[kind], p.ID)
		}
	}
}

func (s *Store) onServerError(env events.Envelope) {
	var p events.ErrorPayload
	if err := env.DecodePayload(&p); err != nil {
		return
	}
	s.logger.Warn("server reported an error", "message", p.Message)
}

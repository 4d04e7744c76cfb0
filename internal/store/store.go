// Package store is the client-side view of projects and tasks. It applies
// live events from the sync connection, raises notifications for changes made
// by other users, and routes local writes through the CRUD API.
package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/thenoetrevino/pasosync/internal/client"
	"github.com/thenoetrevino/pasosync/internal/events"
	"github.com/thenoetrevino/pasosync/internal/models"
	"github.com/thenoetrevino/pasosync/internal/notifications"
	"github.com/thenoetrevino/pasosync/internal/services/project"
	"github.com/thenoetrevino/pasosync/internal/services/task"
)

// API is the CRUD collaborator used for initial loads, resyncs and writes
type API interface {
	ListProjects(ctx context.Context) ([]*models.Project, error)
	CreateProject(ctx context.Context, req project.CreateProjectRequest) (*models.Project, error)
	UpdateProject(ctx context.Context, req project.UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) (*models.ProjectRef, error)

	ListTasks(ctx context.Context, projectID string) ([]*models.Task, error)
	CreateTask(ctx context.Context, req task.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, req task.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) (*models.TaskRef, error)
}

// Socket is the part of the sync connection the store needs
type Socket interface {
	Subscribe(eventType events.EventType, h client.Handler) (unsubscribe func())
	Send(commandType string, payload any) error
	OnOpen(fn func(reconnected bool)) (remove func())
}

// Navigator moves the user away from a view that no longer exists
type Navigator interface {
	ToProjectList()
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func()

// ToProjectList calls f
func (f NavigatorFunc) ToProjectList() { f() }

// DefaultNotificationLimit is how many notifications are kept per entity kind
const DefaultNotificationLimit = 10

// Options configures a Store
type Options struct {
	API        API
	Socket     Socket
	LastAction *client.LastAction
	Navigator  Navigator
	Logger     *slog.Logger
	Clock      client.Clock

	NotificationLimit int

	// OnNotify, if set, is called for every notification after it is stored
	OnNotify func(kind models.EntityKind, n notifications.Notification)
}

// Store holds the client's copy of the data. It is safe for concurrent use.
type Store struct {
	api        API
	socket     Socket
	lastAction *client.LastAction
	navigator  Navigator
	logger     *slog.Logger
	clock      client.Clock
	limit      int
	onNotify   func(models.EntityKind, notifications.Notification)

	mu             sync.RWMutex
	projects       map[string]*models.Project
	tasks          map[string]*models.Task
	currentProject string
	editing        map[models.EntityKind]map[string]struct{}
	notices        map[models.EntityKind][]notifications.Notification

	unbind []func()
}

// New creates an empty store. Call Bind to start receiving live events.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = client.SystemClock
	}
	if opts.LastAction == nil {
		opts.LastAction = client.NewLastAction(opts.Clock, client.DefaultLastActionTTL)
	}
	if opts.Navigator == nil {
		opts.Navigator = NavigatorFunc(func() {})
	}
	if opts.NotificationLimit <= 0 {
		opts.NotificationLimit = DefaultNotificationLimit
	}

	return &Store{
		api:        opts.API,
		socket:     opts.Socket,
		lastAction: opts.LastAction,
		navigator:  opts.Navigator,
		logger:     opts.Logger.With("component", "store"),
		clock:      opts.Clock,
		limit:      opts.NotificationLimit,
		onNotify:   opts.OnNotify,
		projects:   make(map[string]*models.Project),
		tasks:      make(map[string]*models.Task),
		editing: map[models.EntityKind]map[string]struct{}{
			models.EntityProject: {},
			models.EntityTask:    {},
		},
		notices: make(map[models.EntityKind][]notifications.Notification),
	}
}

// Bind subscribes the store to every domain and presence event, and to
// reopen notifications so a reconnect after a gap triggers Resync.
func (s *Store) Bind() {
	handlers := map[events.EventType]client.Handler{
		events.ProjectCreated:      s.onProjectSaved(events.ProjectCreated),
		events.ProjectUpdated:      s.onProjectSaved(events.ProjectUpdated),
		events.ProjectDeleted:      s.onProjectDeleted,
		events.TaskCreated:         s.onTaskSaved(events.TaskCreated),
		events.TaskUpdated:         s.onTaskSaved(events.TaskUpdated),
		events.TaskDeleted:         s.onTaskDeleted,
		events.StartEditingProject: s.onEditing(models.EntityProject, true),
		events.StopEditingProject:  s.onEditing(models.EntityProject, false),
		events.StartEditingTask:    s.onEditing(models.EntityTask, true),
		events.StopEditingTask:     s.onEditing(models.EntityTask, false),
		events.Error:               s.onServerError,
	}

	for _, t := range events.AllEventTypes {
		if h, ok := handlers[t]; ok {
			s.unbind = append(s.unbind, s.socket.Subscribe(t, h))
		}
	}

	s.unbind = append(s.unbind, s.socket.OnOpen(func(reconnected bool) {
		if !reconnected {
			return
		}
		if err := s.Resync(context.Background()); err != nil {
			s.logger.Warn("resync after reconnect failed", "error", err)
		}
	}))
}

// Close drops every subscription made by Bind
func (s *Store) Close() {
	for _, fn := range s.unbind {
		fn()
	}
	s.unbind = nil
}

// Projects returns the known projects, oldest first
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Project returns one project by id
func (s *Store) Project(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return models.Project{}, false
	}
	return *p, true
}

// Tasks returns the known tasks of projectID, oldest first
func (s *Store) Tasks(projectID string) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Task returns one task by id
func (s *Store) Task(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return *t, true
}

// CurrentProject returns the project being viewed, if any
func (s *Store) CurrentProject() (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentProject == "" {
		return models.Project{}, false
	}
	p, ok := s.projects[s.currentProject]
	if !ok {
		return models.Project{}, false
	}
	return *p, true
}

// CurrentProjectID returns the id of the project being viewed, or ""
func (s *Store) CurrentProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentProject
}

// ============================================================================
// Mutations (callers hold mu)
// ============================================================================

func (s *Store) putProjectLocked(p *models.Project) {
	cp := *p
	s.projects[p.ID] = &cp
}

func (s *Store) putTaskLocked(t *models.Task) {
	cp := *t
	s.tasks[t.ID] = &cp
}

// removeProjectLocked drops a project with its tasks and presence. It
// reports whether the project was the one being viewed.
func (s *Store) removeProjectLocked(id string) (wasCurrent bool) {
	delete(s.projects, id)
	delete(s.editing[models.EntityProject], id)
	for taskID, t := range s.tasks {
		if t.ProjectID == id {
			delete(s.tasks, taskID)
			delete(s.editing[models.EntityTask], taskID)
		}
	}
	if s.currentProject == id {
		s.currentProject = ""
		return true
	}
	return false
}

func (s *Store) removeTaskLocked(id string) {
	delete(s.tasks, id)
	delete(s.editing[models.EntityTask], id)
}

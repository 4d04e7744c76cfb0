package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/pasosync/internal/client"
	"github.com/thenoetrevino/pasosync/internal/events"
	"github.com/thenoetrevino/pasosync/internal/models"
	"github.com/thenoetrevino/pasosync/internal/services/project"
	"github.com/thenoetrevino/pasosync/internal/services/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
// Manual Clock
// ============================================================================

type manualTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) client.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	var rest []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.at.After(c.now) {
			due = append(due, t)
		} else if !t.stopped {
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	for _, t := range due {
		t.stopped = true
		t.f()
	}
}

// ============================================================================
// Fake Socket
// ============================================================================

type sentCommand struct {
	Type    string
	Payload any
}

// fakeSocket routes through a real subscription registry
type fakeSocket struct {
	subs *client.Subscriptions

	mu      sync.Mutex
	sent    []sentCommand
	onOpen  []func(bool)
	sendErr error
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{subs: client.NewSubscriptions(discardLogger())}
}

func (f *fakeSocket) Subscribe(t events.EventType, h client.Handler) func() {
	return f.subs.Subscribe(t, h)
}

func (f *fakeSocket) Send(commandType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentCommand{Type: commandType, Payload: payload})
	return nil
}

func (f *fakeSocket) OnOpen(fn func(bool)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onOpen = append(f.onOpen, fn)
	idx := len(f.onOpen) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.onOpen[idx] = nil
	}
}

func (f *fakeSocket) open(reconnected bool) {
	f.mu.Lock()
	fns := make([]func(bool), len(f.onOpen))
	copy(fns, f.onOpen)
	f.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(reconnected)
		}
	}
}

// deliver encodes a broadcast and dispatches it as the connection would
func (f *fakeSocket) deliver(t *testing.T, eventType events.EventType, payload any) {
	t.Helper()
	_, env, err := events.Encode(eventType, payload)
	require.NoError(t, err)
	f.subs.Dispatch(env)
}

func (f *fakeSocket) Sent() []sentCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCommand(nil), f.sent...)
}

// ============================================================================
// Fake API
// ============================================================================

type fakeAPI struct {
	mu       sync.Mutex
	projects map[string]*models.Project
	tasks    map[string]*models.Task
	calls    []string
	now      time.Time
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		projects: make(map[string]*models.Project),
		tasks:    make(map[string]*models.Task),
		now:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (a *fakeAPI) record(call string) {
	a.calls = append(a.calls, call)
}

func (a *fakeAPI) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeAPI) tick() time.Time {
	a.now = a.now.Add(time.Second)
	return a.now
}

func (a *fakeAPI) seedProject(id, name string) *models.Project {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := &models.Project{ID: id, Name: name, Status: models.ProjectActive, CreatedAt: a.tick()}
	a.projects[id] = p
	return p
}

func (a *fakeAPI) seedTask(id, projectID, title string) *models.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := &models.Task{ID: id, ProjectID: projectID, Title: title, State: models.TaskCreated, CreatedAt: a.tick()}
	a.tasks[id] = t
	return t
}

func (a *fakeAPI) dropProject(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.projects, id)
}

func (a *fakeAPI) ListProjects(context.Context) ([]*models.Project, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("ListProjects")
	var out []*models.Project
	for _, p := range a.projects {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (a *fakeAPI) CreateProject(_ context.Context, req project.CreateProjectRequest) (*models.Project, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("CreateProject")
	p := &models.Project{ID: req.ID, Name: req.Name, Description: req.Description, Status: models.ProjectActive, CreatedAt: a.tick()}
	a.projects[p.ID] = p
	cp := *p
	return &cp, nil
}

func (a *fakeAPI) UpdateProject(_ context.Context, req project.UpdateProjectRequest) (*models.Project, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("UpdateProject")
	p, ok := a.projects[req.ID]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	cp := *p
	return &cp, nil
}

func (a *fakeAPI) DeleteProject(_ context.Context, id string) (*models.ProjectRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("DeleteProject")
	p, ok := a.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	delete(a.projects, id)
	return &models.ProjectRef{ID: p.ID, Name: p.Name}, nil
}

func (a *fakeAPI) ListTasks(_ context.Context, projectID string) ([]*models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("ListTasks:" + projectID)
	var out []*models.Task
	for _, t := range a.tasks {
		if projectID == "" || t.ProjectID == projectID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (a *fakeAPI) CreateTask(_ context.Context, req task.CreateTaskRequest) (*models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("CreateTask")
	t := &models.Task{ID: req.ID, ProjectID: req.ProjectID, Title: req.Title, State: models.TaskCreated, CreatedAt: a.tick()}
	a.tasks[t.ID] = t
	cp := *t
	return &cp, nil
}

func (a *fakeAPI) UpdateTask(_ context.Context, req task.UpdateTaskRequest) (*models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("UpdateTask")
	t, ok := a.tasks[req.TaskID]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.State != nil {
		t.State = *req.State
	}
	cp := *t
	return &cp, nil
}

func (a *fakeAPI) DeleteTask(_ context.Context, id string) (*models.TaskRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("DeleteTask")
	t, ok := a.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	delete(a.tasks, id)
	return &models.TaskRef{ID: t.ID, Title: t.Title}, nil
}

// ============================================================================
// Fixture
// ============================================================================

type fixture struct {
	store      *Store
	socket     *fakeSocket
	api        *fakeAPI
	clock      *manualClock
	redirects  int
	lastAction *client.LastAction
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		socket: newFakeSocket(),
		api:    newFakeAPI(),
		clock:  newManualClock(),
	}
	f.lastAction = client.NewLastAction(f.clock, client.DefaultLastActionTTL)
	f.store = New(Options{
		API:        f.api,
		Socket:     f.socket,
		LastAction: f.lastAction,
		Navigator:  NavigatorFunc(func() { f.redirects++ }),
		Logger:     discardLogger(),
		Clock:      f.clock,
	})
	f.store.Bind()
	t.Cleanup(f.store.Close)
	return f
}

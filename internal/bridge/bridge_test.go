package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/pasosync/internal/daemon"
	"github.com/thenoetrevino/pasosync/internal/database"
	"github.com/thenoetrevino/pasosync/internal/events"
	"github.com/thenoetrevino/pasosync/internal/models"
)

type published struct {
	eventType events.EventType
	payload   any
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
}

func (f *fakePublisher) Publish(eventType events.EventType, payload any) daemon.Delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, published{eventType, payload})
	return daemon.Delivery{EventID: events.NewEventID()}
}

func (f *fakePublisher) Sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.sent...)
}

func newTestBridge() (*Bridge, *fakePublisher) {
	pub := &fakePublisher{}
	return New(pub, slog.New(slog.NewTextHandler(io.Discard, nil))), pub
}

func payloadJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestEventTypeFor_CompleteMapping(t *testing.T) {
	tests := []struct {
		kind      models.EntityKind
		lifecycle models.Lifecycle
		want      events.EventType
	}{
		{models.EntityProject, models.LifecycleInsert, events.ProjectCreated},
		{models.EntityProject, models.LifecycleUpdate, events.ProjectUpdated},
		{models.EntityProject, models.LifecycleDelete, events.ProjectDeleted},
		{models.EntityTask, models.LifecycleInsert, events.TaskCreated},
		{models.EntityTask, models.LifecycleUpdate, events.TaskUpdated},
		{models.EntityTask, models.LifecycleDelete, events.TaskDeleted},
	}

	for _, tt := range tests {
		got, ok := EventTypeFor(tt.kind, tt.lifecycle)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got)
		assert.False(t, got.IsSystem())
	}

	_, ok := EventTypeFor("Comment", models.LifecycleInsert)
	assert.False(t, ok)
}

func TestBridge_InsertPublishesFullDocument(t *testing.T) {
	b, pub := newTestBridge()
	task := &models.Task{ID: "t1", ProjectID: "p1", Title: "Write", State: models.TaskCreated}

	b.AfterInsert(models.EntityTask, task)

	sent := pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, events.TaskCreated, sent[0].eventType)
	assert.Same(t, task, sent[0].payload)
}

func TestBridge_DeleteReducesPayload(t *testing.T) {
	b, pub := newTestBridge()

	b.AfterDelete(models.EntityProject, &models.Project{ID: "p1", Name: "Alpha", Description: "gone"})
	b.AfterDelete(models.EntityTask, &models.Task{ID: "t1", ProjectID: "p1", Title: "Write"})

	sent := pub.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, events.ProjectDeleted, sent[0].eventType)
	assert.JSONEq(t, `{"_id":"p1","name":"Alpha"}`, payloadJSON(t, sent[0].payload))
	assert.Equal(t, events.TaskDeleted, sent[1].eventType)
	assert.JSONEq(t, `{"_id":"t1","title":"Write"}`, payloadJSON(t, sent[1].payload))
}

func TestBridge_DeleteWithoutIDSkipped(t *testing.T) {
	b, pub := newTestBridge()

	b.AfterDelete(models.EntityTask, &models.Task{Title: "anonymous"})
	b.AfterDelete(models.EntityTask, map[string]any{"title": "no id"})
	b.AfterDelete(models.EntityTask, "not an object")

	assert.Empty(t, pub.Sent())
}

func TestBridge_DeleteAcceptsMinimalDocument(t *testing.T) {
	b, pub := newTestBridge()

	b.AfterDelete(models.EntityProject, map[string]any{"_id": "p9"})

	sent := pub.Sent()
	require.Len(t, sent, 1)
	assert.JSONEq(t, `{"_id":"p9"}`, payloadJSON(t, sent[0].payload))
}

func TestBridge_NilDocumentSkipped(t *testing.T) {
	b, pub := newTestBridge()
	b.AfterUpdate(models.EntityProject, nil)
	assert.Empty(t, pub.Sent())
}

func TestBridge_UnmappedEntityIgnored(t *testing.T) {
	b, pub := newTestBridge()
	b.AfterInsert("Comment", map[string]any{"_id": "c1"})
	assert.Empty(t, pub.Sent())
}

// TestBridge_DatabaseHooksEndToEnd drives the bridge from real repository writes
func TestBridge_DatabaseHooksEndToEnd(t *testing.T) {
	ctx := context.Background()
	b, pub := newTestBridge()

	db, err := database.InitDB(ctx, database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := database.NewRepository(db, b)

	p, err := repo.Projects.Create(ctx, models.Project{Name: "Alpha"})
	require.NoError(t, err)
	task, err := repo.Tasks.Create(ctx, models.Task{ProjectID: p.ID, Title: "Write"})
	require.NoError(t, err)
	task.Title = "Rewrite"
	_, err = repo.Tasks.Update(ctx, *task)
	require.NoError(t, err)
	_, err = repo.Projects.Delete(ctx, p.ID)
	require.NoError(t, err)

	var types []events.EventType
	for _, s := range pub.Sent() {
		types = append(types, s.eventType)
	}
	assert.Equal(t, []events.EventType{
		events.ProjectCreated, events.TaskCreated, events.TaskUpdated, events.ProjectDeleted,
	}, types)

	last := pub.Sent()[3]
	assert.JSONEq(t, `{"_id":"`+p.ID+`","name":"Alpha"}`, payloadJSON(t, last.payload))
}

// TestBridge_HubIntegration publishes through a real hub
func TestBridge_HubIntegration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := daemon.NewRegistry(nil, logger)
	hub := daemon.NewHub(registry, nil, logger)

	b := New(hub, logger)
	b.AfterInsert(models.EntityProject, &models.Project{ID: "p1", Name: "Alpha"})
	assert.Equal(t, 0, registry.Count())
}

package database

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/thenoetrevino/pasosync/internal/models"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestDB creates an in-memory database and runs migrations
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(context.Background(), MemoryPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// hookCall is one recorded hook invocation
type hookCall struct {
	lifecycle models.Lifecycle
	kind      models.EntityKind
	doc       any
}

// recordingHooks captures every hook invocation in order
type recordingHooks struct {
	mu    sync.Mutex
	calls []hookCall
}

func (h *recordingHooks) record(l models.Lifecycle, kind models.EntityKind, doc any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hookCall{lifecycle: l, kind: kind, doc: doc})
}

func (h *recordingHooks) AfterInsert(kind models.EntityKind, doc any) {
	h.record(models.LifecycleInsert, kind, doc)
}

func (h *recordingHooks) AfterUpdate(kind models.EntityKind, doc any) {
	h.record(models.LifecycleUpdate, kind, doc)
}

func (h *recordingHooks) AfterDelete(kind models.EntityKind, doc any) {
	h.record(models.LifecycleDelete, kind, doc)
}

func (h *recordingHooks) Calls() []hookCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]hookCall, len(h.calls))
	copy(out, h.calls)
	return out
}

func setupTestRepo(t *testing.T) (*Repository, *recordingHooks) {
	t.Helper()
	hooks := &recordingHooks{}
	return NewRepository(setupTestDB(t), hooks), hooks
}

func createTestProject(t *testing.T, repo *Repository, name string) *models.Project {
	t.Helper()
	p, err := repo.Projects.Create(context.Background(), models.Project{Name: name})
	if err != nil {
		t.Fatalf("Failed to create project %q: %v", name, err)
	}
	return p
}

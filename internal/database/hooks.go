package database

import "github.com/thenoetrevino/pasosync/internal/models"

// Hooks receives every committed write. doc is the resulting *models.Project
// or *models.Task; for deletes it is the document as it was before removal.
// Hooks run synchronously on the writer's goroutine and must not block.
type Hooks interface {
	AfterInsert(kind models.EntityKind, doc any)
	AfterUpdate(kind models.EntityKind, doc any)
	AfterDelete(kind models.EntityKind, doc any)
}

// NopHooks discards every change
type NopHooks struct{}

func (NopHooks) AfterInsert(models.EntityKind, any) {}
func (NopHooks) AfterUpdate(models.EntityKind, any) {}
func (NopHooks) AfterDelete(models.EntityKind, any) {}

// HookFuncs adapts plain functions to Hooks. Nil fields are skipped.
type HookFuncs struct {
	Insert func(models.EntityKind, any)
	Update func(models.EntityKind, any)
	Delete func(models.EntityKind, any)
}

func (h HookFuncs) AfterInsert(kind models.EntityKind, doc any) {
	if h.Insert != nil {
		h.Insert(kind, doc)
	}
}

func (h HookFuncs) AfterUpdate(kind models.EntityKind, doc any) {
	if h.Update != nil {
		h.Update(kind, doc)
	}
}

func (h HookFuncs) AfterDelete(kind models.EntityKind, doc any) {
	if h.Delete != nil {
		h.Delete(kind, doc)
	}
}

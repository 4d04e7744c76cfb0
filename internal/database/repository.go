package database

import "database/sql"

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories using struct embedding.
type Repository struct {
	Projects *ProjectRepo
	Tasks    *TaskRepo
	db       *sql.DB
}

// NewRepository creates a new Repository instance wrapping the given
// database connection. Every committed write is reported to hooks; nil
// hooks discard them.
func NewRepository(db *sql.DB, hooks Hooks) *Repository {
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &Repository{
		Projects: &ProjectRepo{db: db, hooks: hooks},
		Tasks:    &TaskRepo{db: db, hooks: hooks},
		db:       db,
	}
}

// Close closes the underlying database
func (r *Repository) Close() error {
	return r.db.Close()
}

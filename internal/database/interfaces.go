package database

import (
	"context"

	"github.com/thenoetrevino/pasosync/internal/models"
)

// ProjectRepository defines project persistence operations
type ProjectRepository interface {
	Create(ctx context.Context, p models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	GetAll(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, p models.Project) (*models.Project, error)
	Delete(ctx context.Context, id string) (*models.Project, error)
	TaskCount(ctx context.Context, projectID string) (int, error)
}

// TaskRepository defines task persistence operations
type TaskRepository interface {
	Create(ctx context.Context, t models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	GetByProject(ctx context.Context, projectID string) ([]*models.Task, error)
	Update(ctx context.Context, t models.Task) (*models.Task, error)
	Delete(ctx context.Context, id string) (*models.Task, error)
}

// Compile-time verification that the repos implement their interfaces
var (
	_ ProjectRepository = (*ProjectRepo)(nil)
	_ TaskRepository    = (*TaskRepo)(nil)
)

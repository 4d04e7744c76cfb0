package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/thenoetrevino/pasosync/internal/models"
)

// Service defines all project-related business operations
type Service interface {
	// Read operations
	GetAllProjects(ctx context.Context) ([]*models.Project, error)
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	GetTaskCount(ctx context.Context, projectID string) (int, error)

	// Write operations
	CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Project, error)
	UpdateProject(ctx context.Context, req UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) (*models.ProjectRef, error)
}

// CreateProjectRequest encapsulates data for creating a project.
// ID is optional; clients propose one when they need to know it before the write.
type CreateProjectRequest struct {
	ID          string               `json:"_id,omitempty"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status,omitempty"`
}

// UpdateProjectRequest encapsulates data for updating a project.
// Nil fields are left unchanged.
type UpdateProjectRequest struct {
	ID          string                `json:"-"`
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *models.ProjectStatus `json:"status,omitempty"`
}

// repository defines the data access methods needed by the project service
// This interface is private to the service layer
type repository interface {
	Create(ctx context.Context, p models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	GetAll(ctx context.Context) ([]*models.Project, error)
	Update(ctx context.Context, p models.Project) (*models.Project, error)
	Delete(ctx context.Context, id string) (*models.Project, error)
	TaskCount(ctx context.Context, projectID string) (int, error)
}

// service implements Service interface with private repository
type service struct {
	repo repository
}

// NewService creates a new project service. Change events are raised by the
// repository's hooks, not here.
func NewService(repo repository) Service {
	return &service{repo: repo}
}

// GetAllProjects retrieves all projects
func (s *service) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	return s.repo.GetAll(ctx)
}

// GetProjectByID retrieves a specific project
func (s *service) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// GetTaskCount returns the number of tasks in a project
func (s *service) GetTaskCount(ctx context.Context, projectID string) (int, error) {
	if err := validateID(projectID); err != nil {
		return 0, err
	}
	return s.repo.TaskCount(ctx, projectID)
}

// CreateProject creates a new project with validation
func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateProject(req); err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, models.Project{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// UpdateProject updates an existing project
func (s *service) UpdateProject(ctx context.Context, req UpdateProjectRequest) (*models.Project, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}

	// Validate fields if provided
	if req.Name != nil {
		if err := validateName(strings.TrimSpace(*req.Name)); err != nil {
			return nil, err
		}
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	// Get existing project to fill in missing fields
	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, translate(err)
	}

	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Status != nil {
		existing.Status = *req.Status
	}

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

// DeleteProject deletes a project and its tasks, returning what identifies it
func (s *service) DeleteProject(ctx context.Context, id string) (*models.ProjectRef, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return &models.ProjectRef{ID: deleted.ID, Name: deleted.Name}, nil
}

// validateCreateProject validates a CreateProjectRequest
func (s *service) validateCreateProject(req CreateProjectRequest) error {
	if err := validateName(req.Name); err != nil {
		return err
	}
	if req.ID != "" {
		if err := validateID(req.ID); err != nil {
			return err
		}
	}
	if req.Status != "" && !req.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > models.MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidProjectID
	}
	return nil
}

// translate maps storage errors onto service errors
func translate(err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrProjectNotFound, err)
	case errors.Is(err, models.ErrConflict):
		return fmt.Errorf("%w: %v", ErrProjectExists, err)
	}
	return err
}

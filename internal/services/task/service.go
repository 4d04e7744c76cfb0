package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/pasosync/internal/models"
)

// Service defines all task-related business operations
type Service interface {
	// Read operations
	GetTask(ctx context.Context, taskID string) (*models.Task, error)
	GetTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error)

	// Write operations
	CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID string) (*models.TaskRef, error)
}

// CreateTaskRequest encapsulates all data needed to create a task
type CreateTaskRequest struct {
	ID          string           `json:"_id,omitempty"` // Optional client-proposed id
	ProjectID   string           `json:"projectId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	State       models.TaskState `json:"state,omitempty"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
}

// UpdateTaskRequest encapsulates all data needed to update a task
// Fields with pointers are optional - nil means don't update
type UpdateTaskRequest struct {
	TaskID      string            `json:"-"`
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	State       *models.TaskState `json:"state,omitempty"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
	ClearDue    bool              `json:"clearDueDate,omitempty"`
}

// repository defines the data access methods needed by the task service
type repository interface {
	Create(ctx context.Context, t models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	GetByProject(ctx context.Context, projectID string) ([]*models.Task, error)
	Update(ctx context.Context, t models.Task) (*models.Task, error)
	Delete(ctx context.Context, id string) (*models.Task, error)
}

// service implements Service interface
type service struct {
	repo repository
}

// NewService creates a new task service
func NewService(repo repository) Service {
	return &service{repo: repo}
}

// GetTask retrieves one task
func (s *service) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	if !validUUID(taskID) {
		return nil, ErrInvalidTaskID
	}
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, translate(err, ErrTaskNotFound)
	}
	return t, nil
}

// GetTasksByProject lists the tasks of a project; an empty id lists all tasks
func (s *service) GetTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	if projectID != "" && !validUUID(projectID) {
		return nil, ErrInvalidProjectID
	}
	return s.repo.GetByProject(ctx, projectID)
}

// CreateTask handles task creation with validation and business rules
func (s *service) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validateCreateTask(req); err != nil {
		return nil, err
	}

	t, err := s.repo.Create(ctx, models.Task{
		ID:          req.ID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
		DueDate:     req.DueDate,
	})
	if err != nil {
		// The only lookup a create performs is the owning project
		return nil, translate(err, ErrProjectNotFound)
	}
	return t, nil
}

// UpdateTask applies the non-nil fields of req
func (s *service) UpdateTask(ctx context.Context, req UpdateTaskRequest) (*models.Task, error) {
	if !validUUID(req.TaskID) {
		return nil, ErrInvalidTaskID
	}
	if req.Title != nil {
		if err := validateTitle(strings.TrimSpace(*req.Title)); err != nil {
			return nil, err
		}
	}
	if req.State != nil && !req.State.Valid() {
		return nil, ErrInvalidState
	}

	existing, err := s.repo.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, translate(err, ErrTaskNotFound)
	}

	if req.Title != nil {
		existing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.State != nil {
		existing.State = *req.State
	}
	switch {
	case req.ClearDue:
		existing.DueDate = nil
	case req.DueDate != nil:
		existing.DueDate = req.DueDate
	}

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, translate(err, ErrTaskNotFound)
	}
	return updated, nil
}

// DeleteTask removes a task, returning what identifies it
func (s *service) DeleteTask(ctx context.Context, taskID string) (*models.TaskRef, error) {
	if !validUUID(taskID) {
		return nil, ErrInvalidTaskID
	}
	deleted, err := s.repo.Delete(ctx, taskID)
	if err != nil {
		return nil, translate(err, ErrTaskNotFound)
	}
	return &models.TaskRef{ID: deleted.ID, Title: deleted.Title}, nil
}

func (s *service) validateCreateTask(req CreateTaskRequest) error {
	if err := validateTitle(req.Title); err != nil {
		return err
	}
	if !validUUID(req.ProjectID) {
		return ErrInvalidProjectID
	}
	if req.ID != "" && !validUUID(req.ID) {
		return ErrInvalidTaskID
	}
	if req.State != "" && !req.State.Valid() {
		return ErrInvalidState
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > models.MaxNameLength {
		return ErrTitleTooLong
	}
	return nil
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// translate maps storage errors onto service errors
func translate(err, notFound error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("%w: %v", notFound, err)
	case errors.Is(err, models.ErrConflict):
		return fmt.Errorf("%w: %v", ErrTaskExists, err)
	}
	return err
}

// Package apiclient is a JSON client for the CRUD API served by `pasosync serve`.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thenoetrevino/pasosync/internal/api"
	"github.com/thenoetrevino/pasosync/internal/models"
	"github.com/thenoetrevino/pasosync/internal/services/project"
	"github.com/thenoetrevino/pasosync/internal/services/task"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 30 * time.Second

// Error is a non-2xx response. 404 and 409 unwrap to models.ErrNotFound and
// models.ErrConflict.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap lets errors.Is match the model errors
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrConflict
	}
	return nil
}

// Client talks to the CRUD API at a base URL
type Client struct {
	base string
	http *http.Client
}

// New creates a client for baseURL (e.g. http://localhost:3000)
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ============================================================================
// Projects
// ============================================================================

// ListProjects fetches every project
func (c *Client) ListProjects(ctx context.Context) ([]*models.Project, error) {
	var out api.ProjectList
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// GetProject fetches one project
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject creates a project
func (c *Client) CreateProject(ctx context.Context, req project.CreateProjectRequest) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject applies the non-nil fields of req
func (c *Client) UpdateProject(ctx context.Context, req project.UpdateProjectRequest) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(req.ID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project with its tasks
func (c *Client) DeleteProject(ctx context.Context, id string) (*models.ProjectRef, error) {
	var out models.ProjectRef
	if err := c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Tasks
// ============================================================================

// ListTasks fetches the tasks of projectID, or every task if it is empty
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]*models.Task, error) {
	path := "/api/tasks"
	if projectID != "" {
		path += "?" + url.Values{"projectId": {projectID}}.Encode()
	}

	var out api.TaskList
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// GetTask fetches one task
func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask creates a task
func (c *Client) CreateTask(ctx context.Context, req task.CreateTaskRequest) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask applies the non-nil fields of req
func (c *Client) UpdateTask(ctx context.Context, req task.UpdateTaskRequest) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(req.TaskID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, id string) (*models.TaskRef, error) {
	var out models.TaskRef
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb api.ErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil || eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

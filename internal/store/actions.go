package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/thenoetrevino/pasosync/internal/models"
	"github.com/thenoetrevino/pasosync/internal/services/project"
	"github.com/thenoetrevino/pasosync/internal/services/task"
)

// LoadProjects replaces the project list with the server's
func (s *Store) LoadProjects(ctx context.Context) error {
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	s.mu.Lock()
	s.projects = make(map[string]*models.Project, len(projects))
	for _, p := range projects {
		s.putProjectLocked(p)
	}
	s.mu.Unlock()
	return nil
}

// SelectProject makes id the viewed project and loads its tasks
func (s *Store) SelectProject(ctx context.Context, id string) error {
	tasks, err := s.api.ListTasks(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load tasks of project %s: %w", id, err)
	}

	s.mu.Lock()
	s.currentProject = id
	s.replaceTasksLocked(id, tasks)
	s.mu.Unlock()
	return nil
}

// LeaveProject clears the viewed project
func (s *Store) LeaveProject() {
	s.mu.Lock()
	s.currentProject = ""
	s.mu.Unlock()
}

func (s *Store) replaceTasksLocked(projectID string, tasks []*models.Task) {
	for id, t := range s.tasks {
		if t.ProjectID == projectID {
			delete(s.tasks, id)
		}
	}
	for _, t := range tasks {
		s.putTaskLocked(t)
	}
}

// Resync refetches everything after a gap in which events may have been
// missed. Presence is reset since stop commands may have been lost. If the
// viewed project disappeared meanwhile, the user is sent to the project list.
func (s *Store) Resync(ctx context.Context) error {
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to resync projects: %w", err)
	}

	current := s.CurrentProjectID()
	var tasks []*models.Task
	if current != "" {
		tasks, err = s.api.ListTasks(ctx, current)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to resync tasks: %w", err)
		}
	}

	s.mu.Lock()
	s.projects = make(map[string]*models.Project, len(projects))
	for _, p := range projects {
		s.putProjectLocked(p)
	}
	for id, t := range s.tasks {
		if _, ok := s.projects[t.ProjectID]; !ok {
			delete(s.tasks, id)
		}
	}
	for kind := range s.editing {
		s.editing[kind] = map[string]struct{}{}
	}

	lost := false
	// the viewed project may have changed while the tasks were being fetched
	if s.currentProject != "" {
		if _, ok := s.projects[s.currentProject]; !ok {
			s.currentProject = ""
			lost = true
		} else if s.currentProject == current {
			s.replaceTasksLocked(current, tasks)
		}
	}
	s.mu.Unlock()

	s.logger.Info("resynced", "projects", len(projects), "tasks", len(tasks))
	if lost {
		s.navigator.ToProjectList()
	}
	return nil
}

// ============================================================================
// Local writes
//
// Each write records the entity id as the last-action marker before calling
// the API, so the broadcast echo is reported as this client's success rather
// than someone else's change. The response is applied immediately; the echo
// applies the same document again.
// ============================================================================

// CreateProject creates a project under a client-chosen id
func (s *Store) CreateProject(ctx context.Context, req project.CreateProjectRequest) (*models.Project, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	s.lastAction.Set(req.ID)

	p, err := s.api.CreateProject(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.putProjectLocked(p)
	s.mu.Unlock()
	return p, nil
}

// UpdateProject updates a project
func (s *Store) UpdateProject(ctx context.Context, req project.UpdateProjectRequest) (*models.Project, error) {
	s.lastAction.Set(req.ID)

	p, err := s.api.UpdateProject(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.putProjectLocked(p)
	s.mu.Unlock()
	return p, nil
}

// DeleteProject deletes a project and forgets its tasks
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.lastAction.Set(id)

	if _, err := s.api.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.removeProjectLocked(id)
	s.mu.Unlock()
	return nil
}

// CreateTask creates a task under a client-chosen id. An empty ProjectID
// means the viewed project.
func (s *Store) CreateTask(ctx context.Context, req task.CreateTaskRequest) (*models.Task, error) {
	if req.ProjectID == "" {
		req.ProjectID = s.CurrentProjectID()
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	s.lastAction.Set(req.ID)

	t, err := s.api.CreateTask(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.putTaskLocked(t)
	s.mu.Unlock()
	return t, nil
}

// UpdateTask updates a task
func (s *Store) UpdateTask(ctx context.Context, req task.UpdateTaskRequest) (*models.Task, error) {
	s.lastAction.Set(req.TaskID)

	t, err := s.api.UpdateTask(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.putTaskLocked(t)
	s.mu.Unlock()
	return t, nil
}

// DeleteTask deletes a task
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.lastAction.Set(id)

	if _, err := s.api.DeleteTask(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.removeTaskLocked(id)
	s.mu.Unlock()
	return nil
}

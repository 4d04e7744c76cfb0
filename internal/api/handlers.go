// Package api is the JSON CRUD surface for projects and tasks. Writes made
// here reach live clients through the repository's change hooks.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/thenoetrevino/pasosync/internal/models"
	"github.com/thenoetrevino/pasosync/internal/services/project"
	"github.com/thenoetrevino/pasosync/internal/services/task"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// ProjectList is the response of GET /api/projects
type ProjectList struct {
	Projects []*models.Project `json:"projects"`
	Total    int               `json:"total"`
}

// TaskList is the response of GET /api/tasks
type TaskList struct {
	Tasks []*models.Task `json:"tasks"`
	Total int            `json:"total"`
}

// Handlers serves the CRUD routes
type Handlers struct {
	projects project.Service
	tasks    task.Service
	logger   *slog.Logger
}

// New creates the CRUD handlers
func New(projects project.Service, tasks task.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{projects: projects, tasks: tasks, logger: logger.With("component", "api")}
}

// Register mounts every route on mux
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects", h.HandleListProjects)
	mux.HandleFunc("POST /api/projects", h.HandleCreateProject)
	mux.HandleFunc("GET /api/projects/{id}", h.HandleGetProject)
	mux.HandleFunc("PUT /api/projects/{id}", h.HandleUpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.HandleDeleteProject)

	mux.HandleFunc("GET /api/tasks", h.HandleListTasks)
	mux.HandleFunc("POST /api/tasks", h.HandleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", h.HandleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", h.HandleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.HandleDeleteTask)
}

// Handler returns the routes wrapped in the standard middleware chain
func (h *Handlers) Handler(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return Chain(Recovery(h.logger), Logger(h.logger), CORS(allowedOrigins))(mux)
}

// ============================================================================
// Projects
// ============================================================================

// HandleListProjects handles GET /api/projects
func (h *Handlers) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.GetAllProjects(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectList{Projects: projects, Total: len(projects)})
}

// HandleCreateProject handles POST /api/projects
func (h *Handlers) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req project.CreateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.projects.CreateProject(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGetProject handles GET /api/projects/{id}
func (h *Handlers) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetProjectByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdateProject handles PUT /api/projects/{id}
func (h *Handlers) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req project.UpdateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.ID = r.PathValue("id")

	p, err := h.projects.UpdateProject(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDeleteProject handles DELETE /api/projects/{id}
func (h *Handlers) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	ref, err := h.projects.DeleteProject(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

// ============================================================================
// Tasks
// ============================================================================

// HandleListTasks handles GET /api/tasks?projectId=
func (h *Handlers) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.GetTasksByProject(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TaskList{Tasks: tasks, Total: len(tasks)})
}

// HandleCreateTask handles POST /api/tasks
func (h *Handlers) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req task.CreateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.tasks.CreateTask(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// HandleGetTask handles GET /api/tasks/{id}
func (h *Handlers) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleUpdateTask handles PUT /api/tasks/{id}
func (h *Handlers) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req task.UpdateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.TaskID = r.PathValue("id")

	t, err := h.tasks.UpdateTask(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleDeleteTask handles DELETE /api/tasks/{id}
func (h *Handlers) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ref, err := h.tasks.DeleteTask(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

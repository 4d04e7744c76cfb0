package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thenoetrevino/pasosync/internal/services/project"
	"github.com/thenoetrevino/pasosync/internal/services/task"
)

// ErrorBody is the JSON shape of every failed request
type ErrorBody struct {
	Error string `json:"error"`
}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors are ignored as headers are already sent (best effort)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorBody{Error: message})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, task.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, project.ErrProjectExists),
		errors.Is(err, task.ErrTaskExists):
		return http.StatusConflict
	case errors.Is(err, project.ErrEmptyName),
		errors.Is(err, project.ErrNameTooLong),
		errors.Is(err, project.ErrInvalidProjectID),
		errors.Is(err, project.ErrInvalidStatus),
		errors.Is(err, task.ErrEmptyTitle),
		errors.Is(err, task.ErrTitleTooLong),
		errors.Is(err, task.ErrInvalidTaskID),
		errors.Is(err, task.ErrInvalidProjectID),
		errors.Is(err, task.ErrInvalidState):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

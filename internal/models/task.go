package models

import "time"

// Task is a single unit of work inside a project
type Task struct {
	ID          string     `json:"_id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	State       TaskState  `json:"state"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskRef is what survives a task deletion on the wire
type TaskRef struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// Overdue reports whether the task is past due and still open
func (t *Task) Overdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now) && !t.State.Closed()
}

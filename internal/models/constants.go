package models

// ============================================================================
// TASK STATE CONSTANTS
// ============================================================================

// TaskState is the workflow position of a task
type TaskState string

const (
	TaskCreated    TaskState = "CREATED"
	TaskInProgress TaskState = "IN_PROGRESS"
	TaskCompleted  TaskState = "COMPLETED"
	TaskArchived   TaskState = "ARCHIVED"
)

// DefaultTaskState is assigned to tasks created without a state
const DefaultTaskState = TaskCreated

// Valid reports whether s is a known task state
func (s TaskState) Valid() bool {
	switch s {
	case TaskCreated, TaskInProgress, TaskCompleted, TaskArchived:
		return true
	}
	return false
}

// Closed reports whether the task no longer counts as open work
func (s TaskState) Closed() bool {
	return s == TaskCompleted || s == TaskArchived
}

// ============================================================================
// PROJECT STATUS CONSTANTS
// ============================================================================

// ProjectStatus is the lifecycle position of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "in_progress"
	ProjectCompleted ProjectStatus = "completed"
)

// DefaultProjectStatus is assigned to projects created without a status
const DefaultProjectStatus = ProjectActive

// Valid reports whether s is a known project status
func (s ProjectStatus) Valid() bool {
	return s == ProjectActive || s == ProjectCompleted
}

// ============================================================================
// CHANGE HOOK CONSTANTS
// ============================================================================

// EntityKind names a mutable entity the persistence layer reports changes for
type EntityKind string

const (
	EntityProject EntityKind = "Project"
	EntityTask    EntityKind = "Task"
)

// Lifecycle names the kind of change that happened to an entity
type Lifecycle string

const (
	LifecycleInsert Lifecycle = "insert"
	LifecycleUpdate Lifecycle = "update"
	LifecycleDelete Lifecycle = "delete"
)

// MaxNameLength bounds project names and task titles
const MaxNameLength = 255

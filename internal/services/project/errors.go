package project

import "errors"

// Domain errors for project service
var (
	// Validation errors
	ErrEmptyName        = errors.New("project name cannot be empty")
	ErrNameTooLong      = errors.New("project name cannot exceed 255 characters")
	ErrInvalidProjectID = errors.New("invalid project ID")
	ErrInvalidStatus    = errors.New("invalid project status")

	// Business logic errors
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
)

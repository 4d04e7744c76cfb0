package models

import "errors"

// Domain-wide lookup errors shared by the store and the services
var (
	// ErrNotFound indicates the requested entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an entity with the proposed id already exists
	ErrConflict = errors.New("already exists")
)

package models

import "time"

// Project is the top-level organizational unit. Tasks belong to exactly one project.
type Project struct {
	ID          string        `json:"_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ProjectRef is what survives a project deletion on the wire
type ProjectRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

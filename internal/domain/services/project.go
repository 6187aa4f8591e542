package services

import (
	"context"

	"promptvault/internal/domain/models"
)

// ProjectService handles the flat, globally ordered project list.
type ProjectService interface {
	// ListProjects returns all projects in display order.
	ListProjects(ctx context.Context) ([]*models.Project, error)

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, id string) (*models.Project, error)

	// CreateProject creates a project appended at the end of the list.
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)

	// UpdateProject applies a partial update.
	UpdateProject(ctx context.Context, id string, req *UpdateProjectRequest) (*models.Project, error)

	// DeleteProject deletes a project.
	DeleteProject(ctx context.Context, id string) error

	// ReorderProject moves a project within the global list and
	// renumbers every project.
	ReorderProject(ctx context.Context, req *ReorderProjectRequest) ([]*models.Project, error)
}

// CreateProjectRequest represents a project creation request
type CreateProjectRequest struct {
	Title        string `json:"title"`
	FileLocation string `json:"file_location"`
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	Title        *string `json:"title,omitempty"`
	FileLocation *string `json:"file_location,omitempty"`
}

// ReorderProjectRequest represents a reorder of the global list
type ReorderProjectRequest struct {
	ProjectID   string `json:"project_id"`
	NewPosition int    `json:"new_position"`
}

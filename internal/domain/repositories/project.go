package repositories

import (
	"context"

	"promptvault/internal/domain/models"
)

// ProjectRepository defines data access for the flat project list.
type ProjectRepository interface {
	// List returns all projects ordered by display_order ascending
	// with nulls last, then created_at ascending.
	List(ctx context.Context) ([]*models.Project, error)

	// GetByID returns the project or a NotFound error.
	GetByID(ctx context.Context, id string) (*models.Project, error)

	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id string) error

	// MaxDisplayOrder returns the highest display_order across all
	// projects, or -1 when none is assigned.
	MaxDisplayOrder(ctx context.Context) (int, error)
}

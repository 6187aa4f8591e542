package repositories

import (
	"context"

	"promptvault/internal/domain/models"
)

// FolderRepository defines data access for folders.
type FolderRepository interface {
	// GetAll returns every folder, root included, in creation order.
	GetAll(ctx context.Context) ([]*models.Folder, error)

	// GetByID returns the folder or a NotFound error.
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetRoot returns the distinguished root folder, or nil if the
	// database has not been initialized yet.
	GetRoot(ctx context.Context) (*models.Folder, error)

	// ListByParent returns the immediate children of a parent folder.
	ListByParent(ctx context.Context, parentID *string) ([]*models.Folder, error)

	// GetByNameAndParent returns the sibling with the given name, or
	// nil without error when there is none.
	GetByNameAndParent(ctx context.Context, name string, parentID *string) (*models.Folder, error)

	Create(ctx context.Context, folder *models.Folder) error
	Update(ctx context.Context, folder *models.Folder) error

	// UpdatePath rewrites only the stored path of a folder. Used by
	// path propagation after rename/move.
	UpdatePath(ctx context.Context, id, path string) error

	// Delete removes a folder; the store cascades to descendant
	// folders and the prompts they contain.
	Delete(ctx context.Context, id string) error

	// MaxDisplayOrder returns the highest display_order among the
	// children of parentID, or -1 when none is assigned.
	MaxDisplayOrder(ctx context.Context, parentID *string) (int, error)
}

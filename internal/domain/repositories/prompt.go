package repositories

import (
	"context"

	"promptvault/internal/domain/models"
)

// PromptRepository defines data access for prompts and their versions.
type PromptRepository interface {
	// List returns one page of prompts, newest first, plus the total
	// count for the filter. folderID nil means all folders.
	List(ctx context.Context, folderID *string, limit, offset int) ([]*models.Prompt, int, error)

	// ListByFolder returns every prompt in a folder, unpaginated.
	// Used by the ordering engine, which renumbers whole groups.
	ListByFolder(ctx context.Context, folderID string) ([]*models.Prompt, error)

	// GetByID returns the prompt or a NotFound error. Versions are not
	// attached; use ListVersions.
	GetByID(ctx context.Context, id string) (*models.Prompt, error)

	Create(ctx context.Context, prompt *models.Prompt) error
	Update(ctx context.Context, prompt *models.Prompt) error
	Delete(ctx context.Context, id string) error

	// Search runs the combined substring/tag/date search.
	Search(ctx context.Context, opts *models.SearchOptions) ([]*models.Prompt, int, error)

	// MaxDisplayOrder returns the highest display_order in a folder,
	// or -1 when none is assigned.
	MaxDisplayOrder(ctx context.Context, folderID string) (int, error)

	// ListEasyAccess returns the pinned subset in canonical order.
	ListEasyAccess(ctx context.Context) ([]*models.Prompt, error)

	// CountEasyAccess returns the number of pinned prompts system-wide.
	CountEasyAccess(ctx context.Context) (int, error)

	// CreateVersion appends an immutable version row.
	CreateVersion(ctx context.Context, version *models.Version) error

	// CountVersions returns the number of versions for one prompt.
	CountVersions(ctx context.Context, promptID string) (int, error)

	// ListVersions returns a prompt's versions, newest first.
	ListVersions(ctx context.Context, promptID string) ([]models.Version, error)
}

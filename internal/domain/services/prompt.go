package services

import (
	"context"

	"promptvault/internal/domain/models"
	"promptvault/internal/httputil"
)

// PromptService handles prompt business logic: CRUD with version
// recording, search, and the capped easy-access list.
type PromptService interface {
	// ListPrompts returns one page of prompts plus the total count.
	ListPrompts(ctx context.Context, folderID *string, limit, offset int) (*PromptPage, error)

	// GetPrompt retrieves a prompt with its version history.
	GetPrompt(ctx context.Context, id string) (*models.Prompt, error)

	// CreatePrompt creates a prompt and records its initial version.
	CreatePrompt(ctx context.Context, req *CreatePromptRequest) (*models.Prompt, error)

	// UpdatePrompt applies a partial update; a content change records
	// one new version.
	UpdatePrompt(ctx context.Context, id string, req *UpdatePromptRequest) (*models.Prompt, error)

	// DeletePrompt deletes a prompt and its versions.
	DeletePrompt(ctx context.Context, id string) error

	// MovePrompt moves a prompt to a different folder.
	MovePrompt(ctx context.Context, id, folderID string) (*models.Prompt, error)

	// DuplicatePrompt copies a prompt; the copy starts a fresh version
	// history.
	DuplicatePrompt(ctx context.Context, id string, req *DuplicatePromptRequest) (*models.Prompt, error)

	// SearchPrompts runs the combined substring/tag/date search.
	SearchPrompts(ctx context.Context, opts *models.SearchOptions) (*PromptPage, error)

	// ReorderPrompts moves a prompt within its folder and renumbers
	// the folder's prompts.
	ReorderPrompts(ctx context.Context, req *ReorderPromptsRequest) ([]*models.Prompt, error)

	// ListEasyAccess returns the pinned prompts in display order.
	ListEasyAccess(ctx context.Context) ([]*models.Prompt, error)

	// SetEasyAccess pins or unpins a prompt, enforcing the cap on pin.
	SetEasyAccess(ctx context.Context, id string, enabled bool) (*models.Prompt, error)

	// ReorderEasyAccess moves a pinned prompt within the pinned list.
	ReorderEasyAccess(ctx context.Context, req *ReorderEasyAccessRequest) ([]*models.Prompt, error)

	// ApplyEnhancement replaces a prompt's content with an externally
	// produced enhancement and records a version for it.
	ApplyEnhancement(ctx context.Context, id string, enhancedContent string) (*models.Prompt, error)
}

// PromptPage is one page of prompts with pagination info.
type PromptPage struct {
	Prompts []*models.Prompt `json:"prompts"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// CreatePromptRequest represents a prompt creation request
type CreatePromptRequest struct {
	FolderID    string   `json:"folder_id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdatePromptRequest represents a partial prompt update.
// Description uses tri-state presence so a JSON null clears it.
type UpdatePromptRequest struct {
	Title       *string                 `json:"title,omitempty"`
	Description httputil.OptionalString `json:"description"`
	Content     *string                 `json:"content,omitempty"`
	Tags        *[]string               `json:"tags,omitempty"`
}

// DuplicatePromptRequest represents a prompt duplication request.
// Title defaults to "<original> (Copy)"; FolderID to the same folder.
type DuplicatePromptRequest struct {
	Title    *string `json:"title,omitempty"`
	FolderID *string `json:"folder_id,omitempty"`
}

// ReorderPromptsRequest represents a reorder within a folder.
// FolderID states the expected group; a mismatch is an error.
type ReorderPromptsRequest struct {
	PromptID    string `json:"prompt_id"`
	NewPosition int    `json:"new_position"`
	FolderID    string `json:"folder_id"`
}

// ReorderEasyAccessRequest represents a reorder of the pinned list.
type ReorderEasyAccessRequest struct {
	PromptID    string `json:"prompt_id"`
	NewPosition int    `json:"new_position"`
}

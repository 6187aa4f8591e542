package services

import (
	"context"

	"promptvault/internal/domain/models"
)

// FolderService handles folder business logic: tree construction, path
// maintenance, cycle-safe moves and sibling reordering.
type FolderService interface {
	// EnsureRoot creates the distinguished root folder if it is missing.
	EnsureRoot(ctx context.Context) error

	// GetTree returns the nested folder tree (the root's children).
	GetTree(ctx context.Context) ([]*models.FolderTreeNode, error)

	// GetFolder retrieves a folder by ID.
	GetFolder(ctx context.Context, id string) (*models.Folder, error)

	// CreateFolder creates a new folder under a parent.
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// RenameFolder renames a folder and repaths its subtree.
	RenameFolder(ctx context.Context, id string, req *RenameFolderRequest) (*models.Folder, error)

	// MoveFolder re-parents a folder and repaths its subtree.
	MoveFolder(ctx context.Context, id string, req *MoveFolderRequest) (*models.Folder, error)

	// DeleteFolder deletes a folder and everything beneath it.
	DeleteFolder(ctx context.Context, id string) error

	// ReorderFolders moves a folder to a new position among its
	// siblings and renumbers the whole sibling group.
	ReorderFolders(ctx context.Context, req *ReorderFoldersRequest) ([]*models.Folder, error)
}

// CreateFolderRequest represents a folder creation request.
// ParentID nil means directly under the root.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// RenameFolderRequest represents a folder rename request
type RenameFolderRequest struct {
	Name string `json:"name"`
}

// MoveFolderRequest represents a folder move request.
// ParentID nil means move to directly under the root.
type MoveFolderRequest struct {
	ParentID *string `json:"parent_id"`
}

// ReorderFoldersRequest represents a sibling reorder request.
// ParentID states the expected group; a mismatch is an error.
type ReorderFoldersRequest struct {
	FolderID    string  `json:"folder_id"`
	NewPosition int     `json:"new_position"`
	ParentID    *string `json:"parent_id,omitempty"`
}

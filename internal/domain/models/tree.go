package models

import "time"

// FolderTreeNode represents a folder in the nested tree with its children.
// The externally visible tree is the root folder's children; the root
// itself is never emitted.
type FolderTreeNode struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ParentID     *string           `json:"parent_id"`
	Path         string            `json:"path"`
	DisplayOrder *int              `json:"display_order"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Children     []*FolderTreeNode `json:"children"` // Pointers for proper nesting
}

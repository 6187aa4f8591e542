package models

import (
	"time"
)

// RootFolderName is the name of the single distinguished root folder.
// The root has no parent, path "/", and is created once at startup.
// It is never deleted, renamed or re-parented.
const RootFolderName = "Root"

type Folder struct {
	ID           string     `json:"id" db:"id"`
	ParentID     *string    `json:"parent_id" db:"parent_id"` // NULL only for the root folder
	Name         string     `json:"name" db:"name"`
	Path         string     `json:"path" db:"path"` // Stored, kept in sync on rename/move
	DisplayOrder *int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether this folder is the distinguished root.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil && f.Name == RootFolderName
}

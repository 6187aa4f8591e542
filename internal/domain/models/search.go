package models

import (
	"fmt"
	"time"

	"promptvault/internal/config"
)

// SearchOptions describes a prompt search: a free-text query matched
// case-insensitively against title, description, content and tags with
// OR semantics, independently ANDed with the optional filters.
type SearchOptions struct {
	Query         string
	FolderID      *string    // restrict to one folder
	Tags          []string   // every listed tag must be present
	CreatedAfter  *time.Time // inclusive
	CreatedBefore *time.Time // inclusive
	Limit         int
	Offset        int
}

// ApplyDefaults fills in missing or out-of-range pagination values.
func (o *SearchOptions) ApplyDefaults() {
	if o.Limit <= 0 {
		o.Limit = config.DefaultPageLimit
	}
	if o.Limit > config.MaxPageLimit {
		o.Limit = config.MaxPageLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	o.Tags = NormalizeTags(o.Tags)
}

// Validate checks the options after defaults have been applied.
func (o *SearchOptions) Validate() error {
	if o.Query == "" && len(o.Tags) == 0 && o.CreatedAfter == nil && o.CreatedBefore == nil {
		return fmt.Errorf("search requires a query or at least one filter")
	}
	if o.CreatedAfter != nil && o.CreatedBefore != nil && o.CreatedAfter.After(*o.CreatedBefore) {
		return fmt.Errorf("created_after must not be later than created_before")
	}
	return nil
}

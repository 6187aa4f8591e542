package models

import (
	"strings"
	"time"
)

type Prompt struct {
	ID              string    `json:"id" db:"id"`
	FolderID        string    `json:"folder_id" db:"folder_id"`
	Title           string    `json:"title" db:"title"`
	Description     *string   `json:"description,omitempty" db:"description"`
	Content         string    `json:"content" db:"content"`
	OriginalContent string    `json:"original_content" db:"original_content"` // First-ever content, immutable
	Tags            []string  `json:"tags"`                                   // Stored comma-joined, see JoinTags
	IsAIEnhanced    bool      `json:"is_ai_enhanced" db:"is_ai_enhanced"`
	IsEasyAccess    bool      `json:"is_easy_access" db:"is_easy_access"`
	DisplayOrder    *int      `json:"display_order" db:"display_order"`
	EasyAccessOrder *int      `json:"easy_access_order" db:"easy_access_order"` // 1-based within the pinned subset
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
	Versions        []Version `json:"versions,omitempty"`
}

// Version is an immutable snapshot of a prompt's content. Version numbers
// are 1-based and strictly increasing per prompt.
type Version struct {
	ID            string    `json:"id" db:"id"`
	PromptID      string    `json:"prompt_id" db:"prompt_id"`
	Content       string    `json:"content" db:"content"`
	VersionNumber int       `json:"version_number" db:"version_number"`
	CreatedBy     string    `json:"created_by" db:"created_by"` // "user" or "claude"
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Actor values recorded on versions.
const (
	VersionActorUser   = "user"
	VersionActorClaude = "claude"
)

// NormalizeTags trims each tag and discards blanks and duplicates,
// preserving first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// JoinTags renders tags as the comma-joined scalar stored in the database.
func JoinTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

// SplitTags parses the stored scalar back into a tag list.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}

package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 255

	// MaxFolderPathLength is the maximum length for full folder paths.
	// Longer paths indicate overly deep hierarchies (anti-pattern).
	MaxFolderPathLength = 1000

	// MaxPromptTitleLength is the maximum length for prompt titles.
	MaxPromptTitleLength = 500

	// MaxPromptDescriptionLength is the maximum length for prompt descriptions.
	MaxPromptDescriptionLength = 1000

	// MaxTagsLength is the maximum length of the comma-joined tags column.
	MaxTagsLength = 1000

	// MaxProjectTitleLength is the maximum length for project titles.
	MaxProjectTitleLength = 255

	// MaxEasyAccessPrompts caps the pinned ("easy access") prompt list.
	// The cap is enforced when the flag is enabled, never during reorder.
	MaxEasyAccessPrompts = 8

	// DefaultPageLimit is the page size used when the client omits one.
	DefaultPageLimit = 50

	// MaxPageLimit is the largest page size a client may request.
	MaxPageLimit = 100
)

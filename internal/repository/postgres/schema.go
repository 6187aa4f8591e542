package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables if they do not exist. Run once at
// startup; existing tables are left untouched.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				parent_id UUID REFERENCES %s(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				path VARCHAR(1000) NOT NULL,
				display_order INTEGER,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS idx_%s_parent_id ON %s(parent_id)
		`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				folder_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				title VARCHAR(500) NOT NULL,
				description VARCHAR(1000),
				content TEXT NOT NULL,
				original_content TEXT NOT NULL,
				tags VARCHAR(1000) NOT NULL DEFAULT '',
				is_ai_enhanced BOOLEAN NOT NULL DEFAULT FALSE,
				is_easy_access BOOLEAN NOT NULL DEFAULT FALSE,
				display_order INTEGER,
				easy_access_order INTEGER,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Prompts, tables.Folders),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS idx_%s_folder_id ON %s(folder_id)
		`, tables.Prompts, tables.Prompts),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS idx_%s_easy_access ON %s(is_easy_access)
		`, tables.Prompts, tables.Prompts),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				prompt_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				content TEXT NOT NULL,
				version_number INTEGER NOT NULL,
				created_by VARCHAR(50) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (prompt_id, version_number)
			)
		`, tables.Versions, tables.Prompts),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				file_location TEXT NOT NULL,
				display_order INTEGER,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Projects),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

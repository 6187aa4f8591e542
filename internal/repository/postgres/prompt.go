package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/repositories"
)

// PostgresPromptRepository implements the PromptRepository interface
type PostgresPromptRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPromptRepository creates a new prompt repository
func NewPromptRepository(config *RepositoryConfig) repositories.PromptRepository {
	return &PostgresPromptRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const promptColumns = "id, folder_id, title, description, content, original_content, tags, " +
	"is_ai_enhanced, is_easy_access, display_order, easy_access_order, created_at, updated_at"

func scanPrompt(row interface{ Scan(...interface{}) error }) (*models.Prompt, error) {
	var prompt models.Prompt
	var tags string
	err := row.Scan(
		&prompt.ID,
		&prompt.FolderID,
		&prompt.Title,
		&prompt.Description,
		&prompt.Content,
		&prompt.OriginalContent,
		&tags,
		&prompt.IsAIEnhanced,
		&prompt.IsEasyAccess,
		&prompt.DisplayOrder,
		&prompt.EasyAccessOrder,
		&prompt.CreatedAt,
		&prompt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	prompt.Tags = models.SplitTags(tags)
	return &prompt, nil
}

func (r *PostgresPromptRepository) queryPrompts(ctx context.Context, query string, args ...interface{}) ([]*models.Prompt, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	defer rows.Close()

	var prompts []*models.Prompt
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, prompt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}

	return prompts, nil
}

// List returns one page of prompts, newest first, plus the total count
func (r *PostgresPromptRepository) List(ctx context.Context, folderID *string, limit, offset int) ([]*models.Prompt, int, error) {
	var where string
	var args []interface{}

	if folderID != nil {
		where = "WHERE folder_id = $1"
		args = append(args, *folderID)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.tables.Prompts, where)
	var total int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count prompts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, promptColumns, r.tables.Prompts, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	prompts, err := r.queryPrompts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return prompts, total, nil
}

// ListByFolder returns every prompt in a folder, unpaginated
func (r *PostgresPromptRepository) ListByFolder(ctx context.Context, folderID string) ([]*models.Prompt, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE folder_id = $1 ORDER BY created_at ASC
	`, promptColumns, r.tables.Prompts)

	return r.queryPrompts(ctx, query, folderID)
}

// GetByID retrieves a prompt by ID
func (r *PostgresPromptRepository) GetByID(ctx context.Context, id string) (*models.Prompt, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, promptColumns, r.tables.Prompts)

	prompt, err := scanPrompt(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Resource: "prompt", ID: id}
		}
		return nil, fmt.Errorf("get prompt: %w", err)
	}

	return prompt, nil
}

// Create creates a new prompt
func (r *PostgresPromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	if prompt.ID == "" {
		prompt.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, folder_id, title, description, content, original_content, tags,
			is_ai_enhanced, is_easy_access, display_order, easy_access_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING created_at, updated_at
	`, r.tables.Prompts)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		prompt.ID,
		prompt.FolderID,
		prompt.Title,
		prompt.Description,
		prompt.Content,
		prompt.OriginalContent,
		models.JoinTags(prompt.Tags),
		prompt.IsAIEnhanced,
		prompt.IsEasyAccess,
		prompt.DisplayOrder,
		prompt.EasyAccessOrder,
	).Scan(&prompt.CreatedAt, &prompt.UpdatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return &domain.NotFoundError{Resource: "folder", ID: prompt.FolderID}
		}
		return fmt.Errorf("create prompt: %w", err)
	}

	return nil
}

// Update updates a prompt
func (r *PostgresPromptRepository) Update(ctx context.Context, prompt *models.Prompt) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, title = $2, description = $3, content = $4, tags = $5,
			is_ai_enhanced = $6, is_easy_access = $7, display_order = $8,
			easy_access_order = $9, updated_at = now()
		WHERE id = $10
	`, r.tables.Prompts)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		prompt.FolderID,
		prompt.Title,
		prompt.Description,
		prompt.Content,
		models.JoinTags(prompt.Tags),
		prompt.IsAIEnhanced,
		prompt.IsEasyAccess,
		prompt.DisplayOrder,
		prompt.EasyAccessOrder,
		prompt.ID,
	)

	if err != nil {
		if isPgForeignKeyError(err) {
			return &domain.NotFoundError{Resource: "folder", ID: prompt.FolderID}
		}
		return fmt.Errorf("update prompt: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "prompt", ID: prompt.ID}
	}

	return nil
}

// Delete deletes a prompt; the schema cascades to its versions
func (r *PostgresPromptRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1
	`, r.tables.Prompts)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "prompt", ID: id}
	}

	return nil
}

// Search runs the combined substring/tag/date search.
// The free-text query matches title, description, content and tags with
// OR semantics; tag and date filters are ANDed on top.
func (r *PostgresPromptRepository) Search(ctx context.Context, opts *models.SearchOptions) ([]*models.Prompt, int, error) {
	var conditions []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.Query != "" {
		p := arg("%" + opts.Query + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE %s OR description ILIKE %s OR content ILIKE %s OR tags ILIKE %s)",
			p, p, p, p,
		))
	}

	if opts.FolderID != nil {
		conditions = append(conditions, fmt.Sprintf("folder_id = %s", arg(*opts.FolderID)))
	}

	// Wrap the comma-joined scalar in delimiters so each filter matches a
	// whole tag entry, not a substring of one ("go" must not match a
	// prompt tagged only "golang").
	for _, tag := range opts.Tags {
		conditions = append(conditions, fmt.Sprintf("(',' || tags || ',') ILIKE %s", arg("%,"+tag+",%")))
	}

	if opts.CreatedAfter != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= %s", arg(*opts.CreatedAfter)))
	}
	if opts.CreatedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= %s", arg(*opts.CreatedBefore)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.tables.Prompts, where)
	var total int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s %s
		ORDER BY created_at DESC
		LIMIT %s OFFSET %s
	`, promptColumns, r.tables.Prompts, where, arg(opts.Limit), arg(opts.Offset))

	prompts, err := r.queryPrompts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return prompts, total, nil
}

// MaxDisplayOrder returns the highest display_order in a folder, -1 when
// none is assigned
func (r *PostgresPromptRepository) MaxDisplayOrder(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(display_order), -1) FROM %s WHERE folder_id = $1
	`, r.tables.Prompts)

	var max int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max prompt display order: %w", err)
	}

	return max, nil
}

// ListEasyAccess returns the pinned subset ordered by easy_access_order
// with nulls last, then title
func (r *PostgresPromptRepository) ListEasyAccess(ctx context.Context) ([]*models.Prompt, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE is_easy_access = TRUE
		ORDER BY easy_access_order ASC NULLS LAST, title ASC
	`, promptColumns, r.tables.Prompts)

	return r.queryPrompts(ctx, query)
}

// CountEasyAccess returns the number of pinned prompts system-wide
func (r *PostgresPromptRepository) CountEasyAccess(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE is_easy_access = TRUE
	`, r.tables.Prompts)

	var count int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count easy access prompts: %w", err)
	}

	return count, nil
}

// CreateVersion appends an immutable version row
func (r *PostgresPromptRepository) CreateVersion(ctx context.Context, version *models.Version) error {
	if version.ID == "" {
		version.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, prompt_id, content, version_number, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at
	`, r.tables.Versions)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		version.ID,
		version.PromptID,
		version.Content,
		version.VersionNumber,
		version.CreatedBy,
	).Scan(&version.CreatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			// A concurrent writer took this (prompt_id, version_number)
			// slot; surfaced as a conflict, which also rolls back the
			// enclosing content update
			return fmt.Errorf("version %d for prompt %s: %w", version.VersionNumber, version.PromptID, domain.ErrConflict)
		}
		return fmt.Errorf("create version: %w", err)
	}

	return nil
}

// CountVersions returns the number of versions for one prompt
func (r *PostgresPromptRepository) CountVersions(ctx context.Context, promptID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE prompt_id = $1
	`, r.tables.Versions)

	var count int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, promptID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}

	return count, nil
}

// ListVersions returns a prompt's versions, newest first
func (r *PostgresPromptRepository) ListVersions(ctx context.Context, promptID string) ([]models.Version, error) {
	query := fmt.Sprintf(`
		SELECT id, prompt_id, content, version_number, created_by, created_at
		FROM %s WHERE prompt_id = $1
		ORDER BY version_number DESC
	`, r.tables.Versions)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, promptID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := make([]models.Version, 0)
	for rows.Next() {
		var v models.Version
		err := rows.Scan(
			&v.ID,
			&v.PromptID,
			&v.Content,
			&v.VersionNumber,
			&v.CreatedBy,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return versions, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = "id, parent_id, name, path, display_order, created_at, updated_at"

func scanFolder(row interface{ Scan(...interface{}) error }) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.ParentID,
		&folder.Name,
		&folder.Path,
		&folder.DisplayOrder,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// GetAll retrieves every folder, root included, in creation order
func (r *PostgresFolderRepository) GetAll(ctx context.Context) ([]*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY created_at ASC
	`, folderColumns, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all folders: %w", err)
	}
	defer rows.Close()

	var folders []*models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, folderColumns, r.tables.Folders)

	folder, err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Resource: "folder", ID: id}
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetRoot retrieves the distinguished root folder, nil if absent
func (r *PostgresFolderRepository) GetRoot(ctx context.Context) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE parent_id IS NULL AND name = $1
	`, folderColumns, r.tables.Folders)

	folder, err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, models.RootFolderName))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get root folder: %w", err)
	}

	return folder, nil
}

// ListByParent lists immediate child folders
func (r *PostgresFolderRepository) ListByParent(ctx context.Context, parentID *string) ([]*models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s WHERE parent_id IS NULL ORDER BY created_at ASC
		`, folderColumns, r.tables.Folders)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s WHERE parent_id = $1 ORDER BY created_at ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, *parentID)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	var folders []*models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// GetByNameAndParent finds a sibling by name, nil when absent
func (r *PostgresFolderRepository) GetByNameAndParent(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s WHERE name = $1 AND parent_id IS NULL
		`, folderColumns, r.tables.Folders)
		args = append(args, name)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s WHERE name = $1 AND parent_id = $2
		`, folderColumns, r.tables.Folders)
		args = append(args, name, *parentID)
	}

	folder, err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, fmt.Errorf("get folder by name and parent: %w", err)
	}

	return folder, nil
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, parent_id, name, path, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at
	`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.ID,
		folder.ParentID,
		folder.Name,
		folder.Path,
		folder.DisplayOrder,
	).Scan(&folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder %q: %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// Update updates a folder's parent, name, path and display order
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, path = $3, display_order = $4, updated_at = now()
		WHERE id = $5
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.Path,
		folder.DisplayOrder,
		folder.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder %q: %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "folder", ID: folder.ID}
	}

	return nil
}

// UpdatePath rewrites only the stored path of a folder
func (r *PostgresFolderRepository) UpdatePath(ctx context.Context, id, path string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET path = $1, updated_at = now() WHERE id = $2
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, path, id)
	if err != nil {
		return fmt.Errorf("update folder path: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "folder", ID: id}
	}

	return nil
}

// Delete deletes a folder; the schema cascades to descendants
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "folder", ID: id}
	}

	return nil
}

// MaxDisplayOrder returns the highest display_order among a parent's
// children, -1 when none is assigned
func (r *PostgresFolderRepository) MaxDisplayOrder(ctx context.Context, parentID *string) (int, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT COALESCE(MAX(display_order), -1) FROM %s WHERE parent_id IS NULL
		`, r.tables.Folders)
	} else {
		query = fmt.Sprintf(`
			SELECT COALESCE(MAX(display_order), -1) FROM %s WHERE parent_id = $1
		`, r.tables.Folders)
		args = append(args, *parentID)
	}

	var max int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&max); err != nil {
		return 0, fmt.Errorf("max folder display order: %w", err)
	}

	return max, nil
}

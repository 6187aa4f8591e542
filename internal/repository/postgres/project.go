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

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const projectColumns = "id, title, file_location, display_order, created_at, updated_at"

func scanProject(row interface{ Scan(...interface{}) error }) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.Title,
		&project.FileLocation,
		&project.DisplayOrder,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns all projects in canonical display order
func (r *PostgresProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY display_order ASC NULLS LAST, created_at ASC
	`, projectColumns, r.tables.Projects)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// GetByID retrieves a project by ID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, projectColumns, r.tables.Projects)

	project, err := scanProject(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Resource: "project", ID: id}
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return project, nil
}

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, file_location, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING created_at, updated_at
	`, r.tables.Projects)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		project.ID,
		project.Title,
		project.FileLocation,
		project.DisplayOrder,
	).Scan(&project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

// Update updates a project
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, file_location = $2, display_order = $3, updated_at = now()
		WHERE id = $4
	`, r.tables.Projects)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		project.Title,
		project.FileLocation,
		project.DisplayOrder,
		project.ID,
	)

	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "project", ID: project.ID}
	}

	return nil
}

// Delete deletes a project
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1
	`, r.tables.Projects)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "project", ID: id}
	}

	return nil
}

// MaxDisplayOrder returns the highest display_order across all projects,
// -1 when none is assigned
func (r *PostgresProjectRepository) MaxDisplayOrder(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(display_order), -1) FROM %s
	`, r.tables.Projects)

	var max int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("max project display order: %w", err)
	}

	return max, nil
}

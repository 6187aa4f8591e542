package service

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"promptvault/internal/config"
	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/repositories"
	"promptvault/internal/domain/services"
	"promptvault/internal/service/ordering"
)

// projectsGroupKey identifies the single global project list for the
// group lock table.
const projectsGroupKey = "projects"

type projectService struct {
	projectRepo repositories.ProjectRepository
	txManager   repositories.TransactionManager
	locks       *ordering.GroupLocks
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	txManager repositories.TransactionManager,
	locks *ordering.GroupLocks,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		txManager:   txManager,
		locks:       locks,
		logger:      logger,
	}
}

// projectOrderRule ranks the global project list: display_order ascending
// with nulls last, creation time breaking ties.
func projectOrderRule() ordering.Rule[*models.Project] {
	return ordering.Rule[*models.Project]{
		Base:  0,
		ID:    func(p *models.Project) string { return p.ID },
		Order: func(p *models.Project) *int { return p.DisplayOrder },
		SetOrder: func(p *models.Project, v int) {
			order := v
			p.DisplayOrder = &order
		},
		TieBreak: func(a, b *models.Project) bool { return a.CreatedAt.Before(b.CreatedAt) },
	}
}

// ListProjects returns all projects in display order
func (s *projectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return s.projectRepo.List(ctx)
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// CreateProject creates a project, appended at the end of the list
func (s *projectService) CreateProject(ctx context.Context, req *services.CreateProjectRequest) (*models.Project, error) {
	title := strings.TrimSpace(req.Title)
	if err := s.validateTitle(title); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	maxOrder, err := s.projectRepo.MaxDisplayOrder(ctx)
	if err != nil {
		return nil, err
	}
	nextOrder := maxOrder + 1

	project := &models.Project{
		Title:        title,
		FileLocation: strings.TrimSpace(req.FileLocation),
		DisplayOrder: &nextOrder,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "id", project.ID, "title", project.Title)
	return project, nil
}

// UpdateProject applies a partial update to a project
func (s *projectService) UpdateProject(ctx context.Context, id string, req *services.UpdateProjectRequest) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := s.validateTitle(title); err != nil {
			return nil, &domain.ValidationError{Message: err.Error()}
		}
		project.Title = title
	}
	if req.FileLocation != nil {
		project.FileLocation = strings.TrimSpace(*req.FileLocation)
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated", "id", project.ID)
	return project, nil
}

// DeleteProject deletes a project
func (s *projectService) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.projectRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted", "id", id)
	return nil
}

// ReorderProject moves a project within the global list and renumbers
// all projects contiguously from zero
func (s *projectService) ReorderProject(ctx context.Context, req *services.ReorderProjectRequest) ([]*models.Project, error) {
	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(projectsGroupKey)
	defer unlock()

	group, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result, err := projectOrderRule().Reorder(group, req.ProjectID, req.NewPosition)
	if err != nil {
		return nil, &domain.GroupMismatchError{Resource: "project", ID: req.ProjectID, Group: "projects"}
	}

	if result.Changed {
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			for _, p := range result.Members {
				if err := s.projectRepo.Update(txCtx, p); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.logger.Info("projects reordered",
			"project_id", req.ProjectID,
			"new_position", req.NewPosition,
		)
	}

	return result.Members, nil
}

func (s *projectService) validateTitle(title string) error {
	return validation.Validate(title,
		validation.Required.Error("title is required"),
		validation.Length(1, config.MaxProjectTitleLength),
	)
}

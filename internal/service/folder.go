package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"promptvault/internal/config"
	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/repositories"
	"promptvault/internal/domain/services"
	"promptvault/internal/service/ordering"
)

var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

type folderService struct {
	folderRepo repositories.FolderRepository
	txManager  repositories.TransactionManager
	locks      *ordering.GroupLocks
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	txManager repositories.TransactionManager,
	locks *ordering.GroupLocks,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		txManager:  txManager,
		locks:      locks,
		logger:     logger,
	}
}

// folderOrderRule ranks sibling folders: display_order ascending with
// nulls last, creation time breaking ties.
func folderOrderRule() ordering.Rule[*models.Folder] {
	return ordering.Rule[*models.Folder]{
		Base:  0,
		ID:    func(f *models.Folder) string { return f.ID },
		Order: func(f *models.Folder) *int { return f.DisplayOrder },
		SetOrder: func(f *models.Folder, v int) {
			order := v
			f.DisplayOrder = &order
		},
		TieBreak: func(a, b *models.Folder) bool { return a.CreatedAt.Before(b.CreatedAt) },
	}
}

// EnsureRoot creates the distinguished root folder if it is missing
func (s *folderService) EnsureRoot(ctx context.Context) error {
	root, err := s.folderRepo.GetRoot(ctx)
	if err != nil {
		return err
	}
	if root != nil {
		return nil
	}

	root = &models.Folder{
		Name: models.RootFolderName,
		Path: "/",
	}
	if err := s.folderRepo.Create(ctx, root); err != nil {
		return fmt.Errorf("create root folder: %w", err)
	}

	s.logger.Info("root folder created", "id", root.ID)
	return nil
}

// GetTree builds the nested folder tree from the flat folder set and
// returns the root's children. A folder whose parent id does not resolve
// is silently dropped; this mirrors the store's historical tolerance for
// orphans rather than treating them as an integrity error.
func (s *folderService) GetTree(ctx context.Context) ([]*models.FolderTreeNode, error) {
	folders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*models.FolderTreeNode, len(folders))
	for _, f := range folders {
		nodes[f.ID] = &models.FolderTreeNode{
			ID:           f.ID,
			Name:         f.Name,
			ParentID:     f.ParentID,
			Path:         f.Path,
			DisplayOrder: f.DisplayOrder,
			CreatedAt:    f.CreatedAt,
			UpdatedAt:    f.UpdatedAt,
			Children:     []*models.FolderTreeNode{},
		}
	}

	var root *models.FolderTreeNode
	for _, f := range folders {
		node := nodes[f.ID]
		if f.ParentID == nil {
			if f.Name == models.RootFolderName {
				root = node
			}
			continue
		}
		if parent, ok := nodes[*f.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	if root == nil {
		return []*models.FolderTreeNode{}, nil
	}

	sortTreeChildren(root)
	return root.Children, nil
}

// sortTreeChildren orders every child list by the sibling order rule
func sortTreeChildren(node *models.FolderTreeNode) {
	rule := ordering.Rule[*models.FolderTreeNode]{
		ID:    func(n *models.FolderTreeNode) string { return n.ID },
		Order: func(n *models.FolderTreeNode) *int { return n.DisplayOrder },
		SetOrder: func(n *models.FolderTreeNode, v int) {
			order := v
			n.DisplayOrder = &order
		},
		TieBreak: func(a, b *models.FolderTreeNode) bool { return a.CreatedAt.Before(b.CreatedAt) },
	}
	node.Children = rule.Canonical(node.Children)
	for _, child := range node.Children {
		sortTreeChildren(child)
	}
}

// GetFolder retrieves a folder by ID
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// CreateFolder creates a new folder under a parent (root when nil)
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateName(req.Name); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	parent, err := s.resolveParent(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	if err := s.checkDuplicateName(ctx, req.Name, &parent.ID, ""); err != nil {
		return nil, err
	}

	maxOrder, err := s.folderRepo.MaxDisplayOrder(ctx, &parent.ID)
	if err != nil {
		return nil, err
	}
	nextOrder := maxOrder + 1

	folder := &models.Folder{
		ParentID:     &parent.ID,
		Name:         req.Name,
		Path:         childPath(parent.Path, req.Name),
		DisplayOrder: &nextOrder,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", parent.ID,
		"path", folder.Path,
	)

	return folder, nil
}

// RenameFolder renames a folder and repaths its whole subtree
func (s *folderService) RenameFolder(ctx context.Context, id string, req *services.RenameFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateName(req.Name); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.IsRoot() {
		return nil, &domain.ValidationError{Message: "the root folder cannot be renamed"}
	}

	if folder.Name != req.Name {
		if err := s.checkDuplicateName(ctx, req.Name, folder.ParentID, folder.ID); err != nil {
			return nil, err
		}
	}

	folder.Name = req.Name
	if err := s.repathSubtree(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed",
		"id", folder.ID,
		"name", folder.Name,
		"path", folder.Path,
	)

	return folder, nil
}

// MoveFolder re-parents a folder and repaths its whole subtree
func (s *folderService) MoveFolder(ctx context.Context, id string, req *services.MoveFolderRequest) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.IsRoot() {
		return nil, &domain.InvalidParentError{Message: "the root folder cannot be moved"}
	}

	parent, err := s.resolveParent(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	// A no-op move is an invalid-parent condition, not a silent success
	if folder.ParentID != nil && *folder.ParentID == parent.ID {
		return nil, &domain.InvalidParentError{Message: "folder is already in this location"}
	}

	folders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if wouldCreateCycle(folder.ID, parent.ID, folderIndex(folders)) {
		return nil, &domain.InvalidParentError{Message: "cannot move a folder into its own descendant"}
	}

	if err := s.checkDuplicateName(ctx, folder.Name, &parent.ID, folder.ID); err != nil {
		return nil, err
	}

	folder.ParentID = &parent.ID
	if err := s.repathSubtree(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", folder.ID,
		"new_parent_id", parent.ID,
		"path", folder.Path,
	)

	return folder, nil
}

// DeleteFolder deletes a folder; the store cascades to descendant
// folders and their prompts
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if folder.IsRoot() {
		return &domain.InvalidParentError{Message: "the root folder cannot be deleted"}
	}

	if err := s.folderRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", id, "name", folder.Name)
	return nil
}

// ReorderFolders moves a folder among its siblings and renumbers the
// whole sibling group contiguously from zero
func (s *folderService) ReorderFolders(ctx context.Context, req *services.ReorderFoldersRequest) ([]*models.Folder, error) {
	parent, err := s.resolveParent(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}
	if folder.ParentID == nil || *folder.ParentID != parent.ID {
		return nil, &domain.GroupMismatchError{Resource: "folder", ID: req.FolderID, Group: "parent " + parent.ID}
	}

	unlock := s.locks.Lock("folders:" + parent.ID)
	defer unlock()

	siblings, err := s.folderRepo.ListByParent(ctx, &parent.ID)
	if err != nil {
		return nil, err
	}

	result, err := folderOrderRule().Reorder(siblings, req.FolderID, req.NewPosition)
	if err != nil {
		return nil, &domain.GroupMismatchError{Resource: "folder", ID: req.FolderID, Group: "parent " + parent.ID}
	}

	if result.Changed {
		err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			for _, sibling := range result.Members {
				if err := s.folderRepo.Update(txCtx, sibling); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.logger.Info("folders reordered",
			"folder_id", req.FolderID,
			"parent_id", parent.ID,
			"new_position", req.NewPosition,
		)
	}

	return result.Members, nil
}

// resolveParent maps a nullable parent id to a concrete folder; nil
// means directly under the root
func (s *folderService) resolveParent(ctx context.Context, parentID *string) (*models.Folder, error) {
	if parentID == nil {
		root, err := s.folderRepo.GetRoot(ctx)
		if err != nil {
			return nil, err
		}
		if root == nil {
			return nil, fmt.Errorf("root folder is not initialized")
		}
		return root, nil
	}
	return s.folderRepo.GetByID(ctx, *parentID)
}

// checkDuplicateName rejects a sibling name collision; excludeID skips
// the folder being renamed/moved itself
func (s *folderService) checkDuplicateName(ctx context.Context, name string, parentID *string, excludeID string) error {
	existing, err := s.folderRepo.GetByNameAndParent(ctx, name, parentID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}
	return nil
}

// repathSubtree computes the new path for a folder and every descendant,
// then persists the folder and all changed paths in one transaction.
// All paths are computed before the first write so a failure cannot
// leave the subtree partially repathed.
func (s *folderService) repathSubtree(ctx context.Context, folder *models.Folder) error {
	folders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	// The loaded snapshot predates the in-flight rename/move
	byID := folderIndex(folders)
	byID[folder.ID] = folder

	byParent := make(map[string][]*models.Folder)
	for _, f := range byID {
		if f.ParentID != nil {
			byParent[*f.ParentID] = append(byParent[*f.ParentID], f)
		}
	}

	parentPath := "/"
	if folder.ParentID != nil {
		parent, ok := byID[*folder.ParentID]
		if !ok {
			return &domain.NotFoundError{Resource: "folder", ID: *folder.ParentID}
		}
		parentPath = parent.Path
	}

	newPaths := make(map[string]string)
	var walk func(f *models.Folder, base string)
	walk = func(f *models.Folder, base string) {
		path := childPath(base, f.Name)
		newPaths[f.ID] = path
		for _, child := range byParent[f.ID] {
			walk(child, path)
		}
	}
	walk(folder, parentPath)

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder.Path = newPaths[folder.ID]
		if err := s.folderRepo.Update(txCtx, folder); err != nil {
			return err
		}
		for id, path := range newPaths {
			if id == folder.ID {
				continue
			}
			if err := s.folderRepo.UpdatePath(txCtx, id, path); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *folderService) validateName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.Length(1, config.MaxFolderNameLength),
		validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
	)
}

// childPath joins a parent path and a child name, trimming the parent's
// trailing slash so the root path "/" does not double up
func childPath(parentPath, name string) string {
	return strings.TrimRight(parentPath, "/") + "/" + name
}

// folderIndex builds an id lookup over a folder snapshot
func folderIndex(folders []*models.Folder) map[string]*models.Folder {
	byID := make(map[string]*models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	return byID
}

// wouldCreateCycle reports whether re-parenting folderID under
// candidateParentID would make the folder its own ancestor. It walks the
// parent chain upward from the candidate over the given snapshot.
func wouldCreateCycle(folderID, candidateParentID string, byID map[string]*models.Folder) bool {
	currentID := candidateParentID
	for {
		if currentID == folderID {
			return true
		}
		current, ok := byID[currentID]
		if !ok || current.ParentID == nil {
			return false
		}
		currentID = *current.ParentID
	}
}

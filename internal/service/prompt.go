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

// easyAccessGroupKey identifies the single system-wide pinned list for
// the group lock table.
const easyAccessGroupKey = "easy-access"

type promptService struct {
	promptRepo repositories.PromptRepository
	folderRepo repositories.FolderRepository
	txManager  repositories.TransactionManager
	locks      *ordering.GroupLocks
	logger     *slog.Logger
}

// NewPromptService creates a new prompt service
func NewPromptService(
	promptRepo repositories.PromptRepository,
	folderRepo repositories.FolderRepository,
	txManager repositories.TransactionManager,
	locks *ordering.GroupLocks,
	logger *slog.Logger,
) services.PromptService {
	return &promptService{
		promptRepo: promptRepo,
		folderRepo: folderRepo,
		txManager:  txManager,
		locks:      locks,
		logger:     logger,
	}
}

// promptOrderRule ranks prompts within a folder: display_order ascending
// with nulls last, creation time breaking ties.
func promptOrderRule() ordering.Rule[*models.Prompt] {
	return ordering.Rule[*models.Prompt]{
		Base:  0,
		ID:    func(p *models.Prompt) string { return p.ID },
		Order: func(p *models.Prompt) *int { return p.DisplayOrder },
		SetOrder: func(p *models.Prompt, v int) {
			order := v
			p.DisplayOrder = &order
		},
		TieBreak: func(a, b *models.Prompt) bool { return a.CreatedAt.Before(b.CreatedAt) },
	}
}

// easyAccessOrderRule ranks the pinned list: easy_access_order ascending
// with nulls last and a 1-based numbering; ties break by title, not
// creation time.
func easyAccessOrderRule() ordering.Rule[*models.Prompt] {
	return ordering.Rule[*models.Prompt]{
		Base:  1,
		ID:    func(p *models.Prompt) string { return p.ID },
		Order: func(p *models.Prompt) *int { return p.EasyAccessOrder },
		SetOrder: func(p *models.Prompt, v int) {
			order := v
			p.EasyAccessOrder = &order
		},
		TieBreak: func(a, b *models.Prompt) bool { return a.Title < b.Title },
	}
}

// ListPrompts returns one page of prompts plus the total count
func (s *promptService) ListPrompts(ctx context.Context, folderID *string, limit, offset int) (*services.PromptPage, error) {
	if folderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *folderID); err != nil {
			return nil, err
		}
	}

	if limit <= 0 {
		limit = config.DefaultPageLimit
	}
	if limit > config.MaxPageLimit {
		limit = config.MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	prompts, total, err := s.promptRepo.List(ctx, folderID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &services.PromptPage{
		Prompts: prompts,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// GetPrompt retrieves a prompt with its version history
func (s *promptService) GetPrompt(ctx context.Context, id string) (*models.Prompt, error) {
	prompt, err := s.promptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	versions, err := s.promptRepo.ListVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	prompt.Versions = versions

	return prompt, nil
}

// CreatePrompt creates a prompt and records its initial version
func (s *promptService) CreatePrompt(ctx context.Context, req *services.CreatePromptRequest) (*models.Prompt, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if _, err := s.folderRepo.GetByID(ctx, req.FolderID); err != nil {
		return nil, err
	}

	maxOrder, err := s.promptRepo.MaxDisplayOrder(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}
	nextOrder := maxOrder + 1

	prompt := &models.Prompt{
		FolderID:        req.FolderID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Content:         req.Content,
		OriginalContent: req.Content,
		Tags:            models.NormalizeTags(req.Tags),
		DisplayOrder:    &nextOrder,
	}

	var version *models.Version
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.promptRepo.Create(txCtx, prompt); err != nil {
			return err
		}
		version, err = s.recordVersion(txCtx, prompt.ID, prompt.Content, models.VersionActorUser)
		return err
	})
	if err != nil {
		return nil, err
	}
	prompt.Versions = []models.Version{*version}

	s.logger.Info("prompt created",
		"id", prompt.ID,
		"title", prompt.Title,
		"folder_id", prompt.FolderID,
	)

	return prompt, nil
}

// UpdatePrompt applies a partial update; a content change records one
// new version, an identical content value records none
func (s *promptService) UpdatePrompt(ctx context.Context, id string, req *services.UpdatePromptRequest) (*models.Prompt, error) {
	prompt, err := s.promptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := s.validateTitle(title); err != nil {
			return nil, &domain.ValidationError{Message: err.Error()}
		}
		prompt.Title = title
	}
	if req.Description.Present {
		prompt.Description = req.Description.Value
	}
	if req.Tags != nil {
		prompt.Tags = models.NormalizeTags(*req.Tags)
	}

	contentChanged := req.Content != nil && *req.Content != prompt.Content
	if contentChanged {
		prompt.Content = *req.Content

		// The row update and the version snapshot land together or not
		// at all; a content change without its version would break the
		// gapless history.
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			if err := s.promptRepo.Update(txCtx, prompt); err != nil {
				return err
			}
			_, err := s.recordVersion(txCtx, prompt.ID, prompt.Content, models.VersionActorUser)
			return err
		})
		if err != nil {
			return nil, err
		}
	} else if err := s.promptRepo.Update(ctx, prompt); err != nil {
		return nil, err
	}

	s.logger.Info("prompt updated", "id", prompt.ID, "content_changed", contentChanged)

	return s.GetPrompt(ctx, id)
}

// DeletePrompt deletes a prompt; the store cascades to its versions
func (s *promptService) DeletePrompt(ctx context.Context, id string) error {
	if _, err := s.promptRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.promptRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("prompt deleted", "id", id)
	return nil
}

// MovePrompt moves a prompt to a different folder, appending it at the
// end of the target folder's order
func (s *promptService) MovePrompt(ctx context.Context, id, folderID string) (*models.Prompt, error) {
	prompt, err := s.promptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return nil, err
	}

	maxOrder, err := s.promptRepo.MaxDisplayOrder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	nextOrder := maxOrder + 1

	prompt.FolderID = folderID
	prompt.DisplayOrder = &nextOrder

	if err := s.promptRepo.Update(ctx, prompt); err != nil {
		return nil, err
	}

	s.logger.Info("prompt moved", "id", id, "folder_id", folderID)
	return prompt, nil
}

// DuplicatePrompt copies a prompt. The copy starts a fresh version
// history; its original_content is the content at copy time.
func (s *promptService) DuplicatePrompt(ctx context.Context, id string, req *services.DuplicatePromptRequest) (*models.Prompt, error) {
	original, err := s.promptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := original.Title + " (Copy)"
	if req.Title != nil {
		title = *req.Title
	}

	folderID := original.FolderID
	if req.FolderID != nil {
		folderID = *req.FolderID
	}

	return s.CreatePrompt(ctx, &services.CreatePromptRequest{
		FolderID:    folderID,
		Title:       title,
		Description: original.Description,
		Content:     original.Content,
		Tags:        original.Tags,
	})
}

// SearchPrompts runs the combined substring/tag/date search
func (s *promptService) SearchPrompts(ctx context.Context, opts *models.SearchOptions) (*services.PromptPage, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if opts.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *opts.FolderID); err != nil {
			return nil, err
		}
	}

	prompts, total, err := s.promptRepo.Search(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &services.PromptPage{
		Prompts: prompts,
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	}, nil
}

// ReorderPrompts moves a prompt within its folder and renumbers the
// folder's prompts contiguously from zero
func (s *promptService) ReorderPrompts(ctx context.Context, req *services.ReorderPromptsRequest) ([]*models.Prompt, error) {
	prompt, err := s.promptRepo.GetByID(ctx, req.PromptID)
	if err != nil {
		return nil, err
	}
	if prompt.FolderID != req.FolderID {
		return nil, &domain.GroupMismatchError{Resource: "prompt", ID: req.PromptID, Group: "folder " + req.FolderID}
	}

	if _, err := s.folderRepo.GetByID(ctx, req.FolderID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock("prompts:" + req.FolderID)
	defer unlock()

	group, err := s.promptRepo.ListByFolder(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}

	result, err := promptOrderRule().Reorder(group, req.PromptID, req.NewPosition)
	if err != nil {
		return nil, &domain.GroupMismatchError{Resource: "prompt", ID: req.PromptID, Group: "folder " + req.FolderID}
	}

	if result.Changed {
		if err := s.persistPrompts(ctx, result.Members); err != nil {
			return nil, err
		}

		s.logger.Info("prompts reordered",
			"prompt_id", req.PromptID,
			"folder_id", req.FolderID,
			"new_position", req.NewPosition,
		)
	}

	return result.Members, nil
}

// ListEasyAccess returns the pinned prompts in display order
func (s *promptService) ListEasyAccess(ctx context.Context) ([]*models.Prompt, error) {
	return s.promptRepo.ListEasyAccess(ctx)
}

// SetEasyAccess pins or unpins a prompt. Pinning is rejected once the
// cap is reached and appends at the end of the 1-based list; unpinning
// clears the slot and renumbers the remaining pinned prompts so their
// orders stay contiguous from one.
func (s *promptService) SetEasyAccess(ctx context.Context, id string, enabled bool) (*models.Prompt, error) {
	prompt, err := s.promptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if prompt.IsEasyAccess == enabled {
		return prompt, nil
	}

	unlock := s.locks.Lock(easyAccessGroupKey)
	defer unlock()

	if enabled {
		count, err := s.promptRepo.CountEasyAccess(ctx)
		if err != nil {
			return nil, err
		}
		if count >= config.MaxEasyAccessPrompts {
			return nil, &domain.PinCapError{Limit: config.MaxEasyAccessPrompts}
		}

		next := count + 1 // 1-based, appended at the end
		prompt.IsEasyAccess = true
		prompt.EasyAccessOrder = &next

		if err := s.promptRepo.Update(ctx, prompt); err != nil {
			return nil, err
		}
	} else {
		prompt.IsEasyAccess = false
		prompt.EasyAccessOrder = nil

		// Close the gap the departing prompt leaves behind, so the next
		// pin's count+1 slot stays correct.
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			if err := s.promptRepo.Update(txCtx, prompt); err != nil {
				return err
			}

			survivors, err := s.promptRepo.ListEasyAccess(txCtx)
			if err != nil {
				return err
			}

			rule := easyAccessOrderRule()
			for i, p := range rule.Canonical(survivors) {
				want := rule.Base + i
				if cur := rule.Order(p); cur != nil && *cur == want {
					continue
				}
				rule.SetOrder(p, want)
				if err := s.promptRepo.Update(txCtx, p); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("easy access changed", "id", id, "enabled", enabled)
	return prompt, nil
}

// ReorderEasyAccess moves a pinned prompt within the pinned list and
// renumbers it contiguously from one. Membership never changes here;
// the cap is enforced only when the flag is set.
func (s *promptService) ReorderEasyAccess(ctx context.Context, req *services.ReorderEasyAccessRequest) ([]*models.Prompt, error) {
	prompt, err := s.promptRepo.GetByID(ctx, req.PromptID)
	if err != nil {
		return nil, err
	}
	if !prompt.IsEasyAccess {
		return nil, &domain.GroupMismatchError{Resource: "prompt", ID: req.PromptID, Group: "easy access list"}
	}

	unlock := s.locks.Lock(easyAccessGroupKey)
	defer unlock()

	group, err := s.promptRepo.ListEasyAccess(ctx)
	if err != nil {
		return nil, err
	}

	result, err := easyAccessOrderRule().Reorder(group, req.PromptID, req.NewPosition)
	if err != nil {
		return nil, &domain.GroupMismatchError{Resource: "prompt", ID: req.PromptID, Group: "easy access list"}
	}

	if result.Changed {
		if err := s.persistPrompts(ctx, result.Members); err != nil {
			return nil, err
		}

		s.logger.Info("easy access reordered",
			"prompt_id", req.PromptID,
			"new_position", req.NewPosition,
		)
	}

	return result.Members, nil
}

// ApplyEnhancement replaces a prompt's content with an externally
// produced enhancement. This is the explicit second step after the
// enhancement call itself, which never mutates stored content.
func (s *promptService) ApplyEnhancement(ctx context.Context, id string, enhancedContent string) (*models.Prompt, error) {
	if enhancedContent == "" {
		return nil, &domain.ValidationError{Message: "enhanced content is required"}
	}

	prompt, err := s.promptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	contentChanged := prompt.Content != enhancedContent
	prompt.Content = enhancedContent
	prompt.IsAIEnhanced = true

	if contentChanged {
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			if err := s.promptRepo.Update(txCtx, prompt); err != nil {
				return err
			}
			_, err := s.recordVersion(txCtx, prompt.ID, prompt.Content, models.VersionActorClaude)
			return err
		})
		if err != nil {
			return nil, err
		}
	} else if err := s.promptRepo.Update(ctx, prompt); err != nil {
		return nil, err
	}

	s.logger.Info("enhancement applied", "id", id)
	return s.GetPrompt(ctx, id)
}

// recordVersion appends the next version for a prompt. Version numbers
// are per prompt, 1-based and gapless.
func (s *promptService) recordVersion(ctx context.Context, promptID, content, actor string) (*models.Version, error) {
	count, err := s.promptRepo.CountVersions(ctx, promptID)
	if err != nil {
		return nil, err
	}

	version := &models.Version{
		PromptID:      promptID,
		Content:       content,
		VersionNumber: count + 1,
		CreatedBy:     actor,
	}
	if err := s.promptRepo.CreateVersion(ctx, version); err != nil {
		return nil, err
	}

	return version, nil
}

// persistPrompts writes a renumbered group back in one transaction
func (s *promptService) persistPrompts(ctx context.Context, prompts []*models.Prompt) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, p := range prompts {
			if err := s.promptRepo.Update(txCtx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *promptService) validateCreateRequest(req *services.CreatePromptRequest) error {
	return validation.Errors{
		"folder_id": validation.Validate(req.FolderID, validation.Required),
		"title": validation.Validate(req.Title,
			validation.Required,
			validation.Length(1, config.MaxPromptTitleLength),
		),
		"description": validation.Validate(req.Description,
			validation.Length(0, config.MaxPromptDescriptionLength),
		),
		"content": validation.Validate(req.Content, validation.Required),
	}.Filter()
}

func (s *promptService) validateTitle(title string) error {
	return validation.Validate(title,
		validation.Required.Error("title is required"),
		validation.Length(1, config.MaxPromptTitleLength),
	)
}

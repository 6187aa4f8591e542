package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"promptvault/internal/domain/models"
	"promptvault/internal/domain/services"
	"promptvault/internal/enhance"
	"promptvault/internal/httputil"
)

// PromptHandler handles prompt HTTP requests
type PromptHandler struct {
	promptService services.PromptService
	enhancer      *enhance.Enhancer
	logger        *slog.Logger
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(promptService services.PromptService, enhancer *enhance.Enhancer, logger *slog.Logger) *PromptHandler {
	return &PromptHandler{
		promptService: promptService,
		enhancer:      enhancer,
		logger:        logger,
	}
}

// ListPrompts lists prompts, optionally scoped to one folder
// GET /api/prompts?folder_id=&limit=&offset=
func (h *PromptHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var folderID *string
	if v := q.Get("folder_id"); v != "" {
		folderID = &v
	}
	limit := queryInt(q.Get("limit"), 0)
	offset := queryInt(q.Get("offset"), 0)

	page, err := h.promptService.ListPrompts(r.Context(), folderID, limit, offset)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// SearchPrompts runs the combined substring/tag/date search
// GET /api/prompts/search?q=&folder_id=&tags=&created_after=&created_before=&limit=&offset=
func (h *PromptHandler) SearchPrompts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := &models.SearchOptions{
		Query:  q.Get("q"),
		Tags:   models.SplitTags(q.Get("tags")),
		Limit:  queryInt(q.Get("limit"), 0),
		Offset: queryInt(q.Get("offset"), 0),
	}
	if v := q.Get("folder_id"); v != "" {
		opts.FolderID = &v
	}

	var err error
	if opts.CreatedAfter, err = queryTime(q.Get("created_after")); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid created_after date")
		return
	}
	if opts.CreatedBefore, err = queryTime(q.Get("created_before")); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid created_before date")
		return
	}

	page, err := h.promptService.SearchPrompts(r.Context(), opts)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// GetPrompt retrieves a prompt with its version history
// GET /api/prompts/{id}
func (h *PromptHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	prompt, err := h.promptService.GetPrompt(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompt)
}

// CreatePrompt creates a new prompt
// POST /api/prompts
func (h *PromptHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePromptRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prompt, err := h.promptService.CreatePrompt(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, prompt)
}

// UpdatePrompt applies a partial update to a prompt
// PATCH /api/prompts/{id}
func (h *PromptHandler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	var req services.UpdatePromptRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prompt, err := h.promptService.UpdatePrompt(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompt)
}

// DeletePrompt deletes a prompt and its versions
// DELETE /api/prompts/{id}
func (h *PromptHandler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	if err := h.promptService.DeletePrompt(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MovePrompt moves a prompt to a different folder
// POST /api/prompts/{id}/move
func (h *PromptHandler) MovePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	var req struct {
		FolderID string `json:"folder_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FolderID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "folder_id is required")
		return
	}

	prompt, err := h.promptService.MovePrompt(r.Context(), id, req.FolderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompt)
}

// DuplicatePrompt copies a prompt
// POST /api/prompts/{id}/duplicate
func (h *PromptHandler) DuplicatePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	req := services.DuplicatePromptRequest{}
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	prompt, err := h.promptService.DuplicatePrompt(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, prompt)
}

// ReorderPrompts moves a prompt within its folder
// POST /api/prompts/reorder
func (h *PromptHandler) ReorderPrompts(w http.ResponseWriter, r *http.Request) {
	var req services.ReorderPromptsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PromptID == "" || req.FolderID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "prompt_id and folder_id are required")
		return
	}

	prompts, err := h.promptService.ReorderPrompts(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompts)
}

// ListEasyAccess returns the pinned prompts in order
// GET /api/prompts/easy-access
func (h *PromptHandler) ListEasyAccess(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.promptService.ListEasyAccess(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	if prompts == nil {
		prompts = []*models.Prompt{}
	}

	httputil.RespondJSON(w, http.StatusOK, prompts)
}

// SetEasyAccess pins or unpins a prompt
// POST /api/prompts/{id}/easy-access
func (h *PromptHandler) SetEasyAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prompt, err := h.promptService.SetEasyAccess(r.Context(), id, req.Enabled)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompt)
}

// ReorderEasyAccess moves a pinned prompt within the pinned list
// POST /api/prompts/easy-access/reorder
func (h *PromptHandler) ReorderEasyAccess(w http.ResponseWriter, r *http.Request) {
	var req services.ReorderEasyAccessRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PromptID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "prompt_id is required")
		return
	}

	prompts, err := h.promptService.ReorderEasyAccess(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompts)
}

// EnhancePrompt runs the enhancement call and returns the rewritten
// text without saving anything
// POST /api/prompts/{id}/enhance
func (h *PromptHandler) EnhancePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	var req struct {
		Instruction *string `json:"instruction,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	prompt, err := h.promptService.GetPrompt(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	enhanced, err := h.enhancer.Enhance(r.Context(), prompt.Content, req.Instruction)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"prompt_id":        prompt.ID,
		"original_content": prompt.Content,
		"enhanced_content": enhanced,
	})
}

// ApplyEnhancement saves a previously returned enhancement
// POST /api/prompts/{id}/apply-enhancement
func (h *PromptHandler) ApplyEnhancement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Prompt")
	if !ok {
		return
	}

	var req struct {
		EnhancedContent string `json:"enhanced_content"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prompt, err := h.promptService.ApplyEnhancement(r.Context(), id, req.EnhancedContent)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompt)
}

// queryInt parses an integer query parameter, falling back on a default
func queryInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// queryTime parses an RFC 3339 timestamp or a bare date
func queryTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

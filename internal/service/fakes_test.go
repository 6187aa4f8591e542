package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/repositories"
)

// testLogger discards output; services log on every mutation.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock hands out strictly increasing timestamps so creation-order
// tie-breaks are deterministic.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) next() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

// fakeTxManager runs the function directly; the fakes have no
// transactional semantics to enforce. The call counter lets tests
// assert that a write path runs inside a transaction at all.
type fakeTxManager struct {
	execCalls int
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.execCalls++
	return fn(ctx)
}

// ----------------------------------------------------------------------------
// Folder repository fake. Stores copies so service-side mutations only
// persist through Update/UpdatePath, like a real store.
// ----------------------------------------------------------------------------

type fakeFolderRepo struct {
	folders []*models.Folder
	clock   *fakeClock
	nextID  int
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{clock: newFakeClock()}
}

func copyFolder(f *models.Folder) *models.Folder {
	c := *f
	if f.ParentID != nil {
		v := *f.ParentID
		c.ParentID = &v
	}
	if f.DisplayOrder != nil {
		v := *f.DisplayOrder
		c.DisplayOrder = &v
	}
	return &c
}

func (r *fakeFolderRepo) GetAll(ctx context.Context) ([]*models.Folder, error) {
	out := make([]*models.Folder, len(r.folders))
	for i, f := range r.folders {
		out[i] = copyFolder(f)
	}
	return out, nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	for _, f := range r.folders {
		if f.ID == id {
			return copyFolder(f), nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "folder", ID: id}
}

func (r *fakeFolderRepo) GetRoot(ctx context.Context) (*models.Folder, error) {
	for _, f := range r.folders {
		if f.ParentID == nil && f.Name == models.RootFolderName {
			return copyFolder(f), nil
		}
	}
	return nil, nil
}

func (r *fakeFolderRepo) ListByParent(ctx context.Context, parentID *string) ([]*models.Folder, error) {
	var out []*models.Folder
	for _, f := range r.folders {
		switch {
		case parentID == nil && f.ParentID == nil:
			out = append(out, copyFolder(f))
		case parentID != nil && f.ParentID != nil && *f.ParentID == *parentID:
			out = append(out, copyFolder(f))
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) GetByNameAndParent(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	for _, f := range r.folders {
		if f.Name != name {
			continue
		}
		if parentID == nil && f.ParentID == nil {
			return copyFolder(f), nil
		}
		if parentID != nil && f.ParentID != nil && *f.ParentID == *parentID {
			return copyFolder(f), nil
		}
	}
	return nil, nil
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		r.nextID++
		folder.ID = fmt.Sprintf("folder-%d", r.nextID)
	}
	folder.CreatedAt = r.clock.next()
	folder.UpdatedAt = folder.CreatedAt
	r.folders = append(r.folders, copyFolder(folder))
	return nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	for i, f := range r.folders {
		if f.ID == folder.ID {
			updated := copyFolder(folder)
			updated.CreatedAt = f.CreatedAt
			updated.UpdatedAt = r.clock.next()
			r.folders[i] = updated
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "folder", ID: folder.ID}
}

func (r *fakeFolderRepo) UpdatePath(ctx context.Context, id, path string) error {
	for _, f := range r.folders {
		if f.ID == id {
			f.Path = path
			f.UpdatedAt = r.clock.next()
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "folder", ID: id}
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id string) error {
	found := false
	doomed := map[string]bool{id: true}
	// Cascade: sweep until no new descendants turn up
	for changed := true; changed; {
		changed = false
		for _, f := range r.folders {
			if f.ParentID != nil && doomed[*f.ParentID] && !doomed[f.ID] {
				doomed[f.ID] = true
				changed = true
			}
		}
	}

	var kept []*models.Folder
	for _, f := range r.folders {
		if f.ID == id {
			found = true
		}
		if !doomed[f.ID] {
			kept = append(kept, f)
		}
	}
	if !found {
		return &domain.NotFoundError{Resource: "folder", ID: id}
	}
	r.folders = kept
	return nil
}

func (r *fakeFolderRepo) MaxDisplayOrder(ctx context.Context, parentID *string) (int, error) {
	max := -1
	for _, f := range r.folders {
		if f.DisplayOrder == nil {
			continue
		}
		match := (parentID == nil && f.ParentID == nil) ||
			(parentID != nil && f.ParentID != nil && *f.ParentID == *parentID)
		if match && *f.DisplayOrder > max {
			max = *f.DisplayOrder
		}
	}
	return max, nil
}

// ----------------------------------------------------------------------------
// Prompt repository fake
// ----------------------------------------------------------------------------

type fakePromptRepo struct {
	prompts  []*models.Prompt
	versions []models.Version
	clock    *fakeClock
	nextID   int
}

func newFakePromptRepo() *fakePromptRepo {
	return &fakePromptRepo{clock: newFakeClock()}
}

func copyPrompt(p *models.Prompt) *models.Prompt {
	c := *p
	if p.Description != nil {
		v := *p.Description
		c.Description = &v
	}
	if p.DisplayOrder != nil {
		v := *p.DisplayOrder
		c.DisplayOrder = &v
	}
	if p.EasyAccessOrder != nil {
		v := *p.EasyAccessOrder
		c.EasyAccessOrder = &v
	}
	c.Tags = append([]string(nil), p.Tags...)
	c.Versions = nil
	return &c
}

func (r *fakePromptRepo) List(ctx context.Context, folderID *string, limit, offset int) ([]*models.Prompt, int, error) {
	var matched []*models.Prompt
	for _, p := range r.prompts {
		if folderID == nil || p.FolderID == *folderID {
			matched = append(matched, copyPrompt(p))
		}
	}
	// Newest first
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= len(matched) {
		return []*models.Prompt{}, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *fakePromptRepo) ListByFolder(ctx context.Context, folderID string) ([]*models.Prompt, error) {
	var out []*models.Prompt
	for _, p := range r.prompts {
		if p.FolderID == folderID {
			out = append(out, copyPrompt(p))
		}
	}
	return out, nil
}

func (r *fakePromptRepo) GetByID(ctx context.Context, id string) (*models.Prompt, error) {
	for _, p := range r.prompts {
		if p.ID == id {
			return copyPrompt(p), nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "prompt", ID: id}
}

func (r *fakePromptRepo) Create(ctx context.Context, prompt *models.Prompt) error {
	if prompt.ID == "" {
		r.nextID++
		prompt.ID = fmt.Sprintf("prompt-%d", r.nextID)
	}
	prompt.CreatedAt = r.clock.next()
	prompt.UpdatedAt = prompt.CreatedAt
	r.prompts = append(r.prompts, copyPrompt(prompt))
	return nil
}

func (r *fakePromptRepo) Update(ctx context.Context, prompt *models.Prompt) error {
	for i, p := range r.prompts {
		if p.ID == prompt.ID {
			updated := copyPrompt(prompt)
			updated.CreatedAt = p.CreatedAt
			updated.UpdatedAt = r.clock.next()
			r.prompts[i] = updated
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "prompt", ID: prompt.ID}
}

func (r *fakePromptRepo) Delete(ctx context.Context, id string) error {
	for i, p := range r.prompts {
		if p.ID == id {
			r.prompts = append(r.prompts[:i], r.prompts[i+1:]...)
			var kept []models.Version
			for _, v := range r.versions {
				if v.PromptID != id {
					kept = append(kept, v)
				}
			}
			r.versions = kept
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "prompt", ID: id}
}

func (r *fakePromptRepo) Search(ctx context.Context, opts *models.SearchOptions) ([]*models.Prompt, int, error) {
	var matched []*models.Prompt
	query := strings.ToLower(opts.Query)
	for _, p := range r.prompts {
		if opts.FolderID != nil && p.FolderID != *opts.FolderID {
			continue
		}
		if query != "" && !promptMatchesQuery(p, query) {
			continue
		}
		if !promptHasTags(p, opts.Tags) {
			continue
		}
		if opts.CreatedAfter != nil && p.CreatedAt.Before(*opts.CreatedAfter) {
			continue
		}
		if opts.CreatedBefore != nil && p.CreatedAt.After(*opts.CreatedBefore) {
			continue
		}
		matched = append(matched, copyPrompt(p))
	}

	total := len(matched)
	if opts.Offset >= len(matched) {
		return []*models.Prompt{}, total, nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, total, nil
}

func promptMatchesQuery(p *models.Prompt, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Content), query) {
		return true
	}
	if p.Description != nil && strings.Contains(strings.ToLower(*p.Description), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func promptHasTags(p *models.Prompt, tags []string) bool {
	for _, want := range tags {
		found := false
		for _, have := range p.Tags {
			if strings.EqualFold(have, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakePromptRepo) MaxDisplayOrder(ctx context.Context, folderID string) (int, error) {
	max := -1
	for _, p := range r.prompts {
		if p.FolderID == folderID && p.DisplayOrder != nil && *p.DisplayOrder > max {
			max = *p.DisplayOrder
		}
	}
	return max, nil
}

func (r *fakePromptRepo) ListEasyAccess(ctx context.Context) ([]*models.Prompt, error) {
	var out []*models.Prompt
	for _, p := range r.prompts {
		if p.IsEasyAccess {
			out = append(out, copyPrompt(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].EasyAccessOrder, out[j].EasyAccessOrder
		switch {
		case oi == nil && oj == nil:
			return out[i].Title < out[j].Title
		case oi == nil:
			return false
		case oj == nil:
			return true
		default:
			return *oi < *oj
		}
	})
	return out, nil
}

func (r *fakePromptRepo) CountEasyAccess(ctx context.Context) (int, error) {
	count := 0
	for _, p := range r.prompts {
		if p.IsEasyAccess {
			count++
		}
	}
	return count, nil
}

func (r *fakePromptRepo) CreateVersion(ctx context.Context, version *models.Version) error {
	for _, v := range r.versions {
		if v.PromptID == version.PromptID && v.VersionNumber == version.VersionNumber {
			return fmt.Errorf("version %d for prompt %s: %w", version.VersionNumber, version.PromptID, domain.ErrConflict)
		}
	}
	version.ID = fmt.Sprintf("version-%d", len(r.versions)+1)
	version.CreatedAt = r.clock.next()
	r.versions = append(r.versions, *version)
	return nil
}

func (r *fakePromptRepo) CountVersions(ctx context.Context, promptID string) (int, error) {
	count := 0
	for _, v := range r.versions {
		if v.PromptID == promptID {
			count++
		}
	}
	return count, nil
}

func (r *fakePromptRepo) ListVersions(ctx context.Context, promptID string) ([]models.Version, error) {
	var out []models.Version
	for _, v := range r.versions {
		if v.PromptID == promptID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VersionNumber > out[j].VersionNumber
	})
	return out, nil
}

// ----------------------------------------------------------------------------
// Project repository fake
// ----------------------------------------------------------------------------

type fakeProjectRepo struct {
	projects []*models.Project
	clock    *fakeClock
	nextID   int
	// beforeList runs just before List snapshots the store; tests use it
	// to land a concurrent mutation between a lookup and the snapshot.
	beforeList func()
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{clock: newFakeClock()}
}

func copyProject(p *models.Project) *models.Project {
	c := *p
	if p.DisplayOrder != nil {
		v := *p.DisplayOrder
		c.DisplayOrder = &v
	}
	return &c
}

func (r *fakeProjectRepo) List(ctx context.Context) ([]*models.Project, error) {
	if r.beforeList != nil {
		r.beforeList()
	}
	out := make([]*models.Project, len(r.projects))
	for i, p := range r.projects {
		out[i] = copyProject(p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].DisplayOrder, out[j].DisplayOrder
		switch {
		case oi == nil && oj == nil:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case oi == nil:
			return false
		case oj == nil:
			return true
		default:
			return *oi < *oj
		}
	})
	return out, nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	for _, p := range r.projects {
		if p.ID == id {
			return copyProject(p), nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "project", ID: id}
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		r.nextID++
		project.ID = fmt.Sprintf("project-%d", r.nextID)
	}
	project.CreatedAt = r.clock.next()
	project.UpdatedAt = project.CreatedAt
	r.projects = append(r.projects, copyProject(project))
	return nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, project *models.Project) error {
	for i, p := range r.projects {
		if p.ID == project.ID {
			updated := copyProject(project)
			updated.CreatedAt = p.CreatedAt
			updated.UpdatedAt = r.clock.next()
			r.projects[i] = updated
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "project", ID: project.ID}
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id string) error {
	for i, p := range r.projects {
		if p.ID == id {
			r.projects = append(r.projects[:i], r.projects[i+1:]...)
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "project", ID: id}
}

func (r *fakeProjectRepo) MaxDisplayOrder(ctx context.Context) (int, error) {
	max := -1
	for _, p := range r.projects {
		if p.DisplayOrder != nil && *p.DisplayOrder > max {
			max = *p.DisplayOrder
		}
	}
	return max, nil
}

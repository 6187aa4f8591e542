package service

import (
	"context"
	"errors"
	"testing"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/services"
	"promptvault/internal/service/ordering"
)

func newFolderServiceForTest(t *testing.T) (services.FolderService, *fakeFolderRepo) {
	t.Helper()
	repo := newFakeFolderRepo()
	svc := NewFolderService(repo, &fakeTxManager{}, ordering.NewGroupLocks(), testLogger())
	if err := svc.EnsureRoot(context.Background()); err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	return svc, repo
}

func mustCreateFolder(t *testing.T, svc services.FolderService, name string, parentID *string) *models.Folder {
	t.Helper()
	folder, err := svc.CreateFolder(context.Background(), &services.CreateFolderRequest{
		Name:     name,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("CreateFolder(%q): %v", name, err)
	}
	return folder
}

func TestEnsureRoot_Idempotent(t *testing.T) {
	svc, repo := newFolderServiceForTest(t)

	if err := svc.EnsureRoot(context.Background()); err != nil {
		t.Fatalf("second EnsureRoot: %v", err)
	}

	all, _ := repo.GetAll(context.Background())
	roots := 0
	for _, f := range all {
		if f.IsRoot() {
			roots++
			if f.Path != "/" {
				t.Errorf("root path = %q, want /", f.Path)
			}
		}
	}
	if roots != 1 {
		t.Errorf("got %d root folders, want 1", roots)
	}
}

func TestCreateFolder(t *testing.T) {
	svc, _ := newFolderServiceForTest(t)

	work := mustCreateFolder(t, svc, "Work", nil)
	if work.Path != "/Work" {
		t.Errorf("path = %q, want /Work", work.Path)
	}
	if work.DisplayOrder == nil || *work.DisplayOrder != 0 {
		t.Errorf("display order = %v, want 0", work.DisplayOrder)
	}

	personal := mustCreateFolder(t, svc, "Personal", nil)
	if personal.DisplayOrder == nil || *personal.DisplayOrder != 1 {
		t.Errorf("second sibling display order = %v, want 1", personal.DisplayOrder)
	}

	drafts := mustCreateFolder(t, svc, "Drafts", &work.ID)
	if drafts.Path != "/Work/Drafts" {
		t.Errorf("nested path = %q, want /Work/Drafts", drafts.Path)
	}
	if drafts.DisplayOrder == nil || *drafts.DisplayOrder != 0 {
		t.Errorf("nested display order = %v, want 0 (orders are per parent)", drafts.DisplayOrder)
	}
}

func TestCreateFolder_Validation(t *testing.T) {
	svc, _ := newFolderServiceForTest(t)

	tests := []struct {
		name       string
		folderName string
	}{
		{"empty name", ""},
		{"whitespace only", "   "},
		{"contains slash", "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateFolder(context.Background(), &services.CreateFolderRequest{Name: tt.folderName})
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateFolder_DuplicateName(t *testing.T) {
	svc, _ := newFolderServiceForTest(t)
	work := mustCreateFolder(t, svc, "Work", nil)

	_, err := svc.CreateFolder(context.Background(), &services.CreateFolderRequest{Name: "Work"})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ResourceID != work.ID {
		t.Errorf("conflict points at %q, want existing folder %q", conflict.ResourceID, work.ID)
	}

	// The same name is fine under a different parent
	if _, err := svc.CreateFolder(context.Background(), &services.CreateFolderRequest{Name: "Work", ParentID: &work.ID}); err != nil {
		t.Errorf("same name under another parent should succeed, got %v", err)
	}
}

func TestCreateFolder_UnknownParent(t *testing.T) {
	svc, _ := newFolderServiceForTest(t)

	ghost := "no-such-folder"
	_, err := svc.CreateFolder(context.Background(), &services.CreateFolderRequest{Name: "X", ParentID: &ghost})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestRenameFolder_RepathsSubtree(t *testing.T) {
	svc, repo := newFolderServiceForTest(t)
	work := mustCreateFolder(t, svc, "Work", nil)
	drafts := mustCreateFolder(t, svc, "Drafts", &work.ID)
	deep := mustCreateFolder(t, svc, "Deep", &drafts.ID)

	renamed, err := svc.RenameFolder(context.Background(), work.ID, &services.RenameFolderRequest{Name: "Projects"})
	if err != nil {
		t.Fatalf("RenameFolder: %v", err)
	}
	if renamed.Path != "/Projects" {
		t.Errorf("renamed path = %q, want /Projects", renamed.Path)
	}

	wantPaths := map[string]string{
		drafts.ID: "/Projects/Drafts",
		deep.ID:   "/Projects/Drafts/Deep",
	}
	for id, want := range wantPaths {
		stored, err := repo.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID(%s): %v", id, err)
		}
		if stored.Path != want {
			t.Errorf("descendant %s path = %q, want %q", id, stored.Path, want)
		}
	}
}

func TestRenameFolder_RootRefused(t *testing.T) {
	svc, repo := newFolderServiceForTest(t)
	root, _ := repo.GetRoot(context.Background())

	_, err := svc.RenameFolder(context.Background(), root.ID, &services.RenameFolderRequest{Name: "NotRoot"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestMoveFolder_RepathsSubtree(t *testing.T) {
	svc, repo := newFolderServiceForTest(t)
	work := mustCreateFolder(t, svc, "Work", nil)
	projects := mustCreateFolder(t, svc, "Projects", nil)
	drafts := mustCreateFolder(t, svc, "Drafts", &projects.ID)
	notes := mustCreateFolder(t, svc, "Notes", &work.ID)

	moved, err := svc.MoveFolder(context.Background(), work.ID, &services.MoveFolderRequest{ParentID: &drafts.ID})
	if err != nil {
		t.Fatalf("MoveFolder: %v", err)
	}
	if moved.Path != "/Projects/Drafts/Work" {
		t.Errorf("moved path = %q, want /Projects/Drafts/Work", moved.Path)
	}

	storedNotes, _ := repo.GetByID(context.Background(), notes.ID)
	if storedNotes.Path != "/Projects/Drafts/Work/Notes" {
		t.Errorf("descendant path = %q, want /Projects/Drafts/Work/Notes", storedNotes.Path)
	}
}

func TestMoveFolder_Rejections(t *testing.T) {
	svc, repo := newFolderServiceForTest(t)
	root, _ := repo.GetRoot(context.Background())
	work := mustCreateFolder(t, svc, "Work", nil)
	drafts := mustCreateFolder(t, svc, "Drafts", &work.ID)
	deep := mustCreateFolder(t, svc, "Deep", &drafts.ID)

	tests := []struct {
		name     string
		folderID string
		parentID *string
	}{
		{"into itself", work.ID, &work.ID},
		{"into direct child", work.ID, &drafts.ID},
		{"into deeper descendant", work.ID, &deep.ID},
		{"to its current parent", drafts.ID, &work.ID},
		{"root cannot move", root.ID, &work.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MoveFolder(context.Background(), tt.folderID, &services.MoveFolderRequest{ParentID: tt.parentID})
			var invalid *domain.InvalidParentError
			if !errors.As(err, &invalid) {
				t.Errorf("expected InvalidParentError, got %v", err)
			}
		})
	}
}

func TestMoveFolder_DuplicateNameAtDestination(t *testing.T) {
	svc, _ := newFolderServiceForTest(t)
	work := mustCreateFolder(t, svc, "Work", nil)
	mustCreateFolder(t, svc, "Drafts", &work.ID)
	stray := mustCreateFolder(t, svc, "Drafts", nil)

	_, err := svc.MoveFolder(context.Background(), stray.ID, &services.MoveFolderRequest{ParentID: &work.ID})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestDeleteFolder(t *testing.T) {
	svc, repo := newFolderServiceForTest(t)
	root, _ := repo.GetRoot(context.Background())
	work := mustCreateFolder(t, svc, "Work", nil)
	drafts := mustCreateFolder(t, svc, "Drafts", &work.ID)

	if err := svc.DeleteFolder(context.Background(), work.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), drafts.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("descendant should be cascade-deleted, got %v", err)
	}

	if err := svc.DeleteFolder(context.Background(), root.ID); err == nil {
		t.Error("deleting the root should fail")
	}
	if err := svc.DeleteFolder(context.Background(), "no-such"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestGetTree(t *testing.T) {
	svc, _ := newFolderServiceForTest(t)
	work := mustCreateFolder(t, svc, "Work", nil)
	mustCreateFolder(t, svc, "Personal", nil)
	mustCreateFolder(t, svc, "Drafts", &work.ID)

	tree, err := svc.GetTree(context.Background())
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}

	if len(tree) != 2 {
		t.Fatalf("got %d top-level folders, want 2", len(tree))
	}
	if tree[0].Name != "Work" || tree[1].Name != "Personal" {
		t.Errorf("top level = [%s %s], want [Work Personal]", tree[0].Name, tree[1].Name)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Name != "Drafts" {
		t.Errorf("Work children wrong: %+v", tree[0].Children)
	}
}

func TestReorderFolders(t *testing.T) {
	svc, _ := newFolderServiceForTest(t)
	a := mustCreateFolder(t, svc, "A", nil)
	mustCreateFolder(t, svc, "B", nil)
	mustCreateFolder(t, svc, "C", nil)

	siblings, err := svc.ReorderFolders(context.Background(), &services.ReorderFoldersRequest{
		FolderID:    a.ID,
		NewPosition: 2,
	})
	if err != nil {
		t.Fatalf("ReorderFolders: %v", err)
	}

	wantNames := []string{"B", "C", "A"}
	for i, sibling := range siblings {
		if sibling.Name != wantNames[i] {
			t.Fatalf("position %d = %s, want %s", i, sibling.Name, wantNames[i])
		}
		if sibling.DisplayOrder == nil || *sibling.DisplayOrder != i {
			t.Errorf("%s display order = %v, want %d", sibling.Name, sibling.DisplayOrder, i)
		}
	}

	// The new order survives in the tree
	tree, _ := svc.GetTree(context.Background())
	if tree[0].Name != "B" || tree[2].Name != "A" {
		t.Errorf("tree order not persisted: [%s %s %s]", tree[0].Name, tree[1].Name, tree[2].Name)
	}
}

func TestReorderFolders_GroupMismatch(t *testing.T) {
	svc, _ := newFolderServiceForTest(t)
	work := mustCreateFolder(t, svc, "Work", nil)
	drafts := mustCreateFolder(t, svc, "Drafts", &work.ID)

	// Drafts lives under Work, not under the root
	_, err := svc.ReorderFolders(context.Background(), &services.ReorderFoldersRequest{
		FolderID:    drafts.ID,
		NewPosition: 0,
	})
	var mismatch *domain.GroupMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected GroupMismatchError, got %v", err)
	}
}

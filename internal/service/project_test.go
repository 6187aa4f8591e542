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

func newProjectServiceForTest(t *testing.T) services.ProjectService {
	t.Helper()
	return NewProjectService(newFakeProjectRepo(), &fakeTxManager{}, ordering.NewGroupLocks(), testLogger())
}

func mustCreateProject(t *testing.T, svc services.ProjectService, title string) *models.Project {
	t.Helper()
	project, err := svc.CreateProject(context.Background(), &services.CreateProjectRequest{
		Title:        title,
		FileLocation: "/repos/" + title,
	})
	if err != nil {
		t.Fatalf("CreateProject(%q): %v", title, err)
	}
	return project
}

func TestCreateProject(t *testing.T) {
	svc := newProjectServiceForTest(t)

	first := mustCreateProject(t, svc, "alpha")
	if first.DisplayOrder == nil || *first.DisplayOrder != 0 {
		t.Errorf("display order = %v, want 0", first.DisplayOrder)
	}

	second := mustCreateProject(t, svc, "beta")
	if second.DisplayOrder == nil || *second.DisplayOrder != 1 {
		t.Errorf("second display order = %v, want 1", second.DisplayOrder)
	}

	_, err := svc.CreateProject(context.Background(), &services.CreateProjectRequest{Title: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank title should be rejected, got %v", err)
	}
}

func TestUpdateProject(t *testing.T) {
	svc := newProjectServiceForTest(t)
	project := mustCreateProject(t, svc, "alpha")

	location := "/mnt/work/alpha"
	updated, err := svc.UpdateProject(context.Background(), project.ID, &services.UpdateProjectRequest{
		FileLocation: &location,
	})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.FileLocation != location {
		t.Errorf("file location = %q, want %q", updated.FileLocation, location)
	}
	if updated.Title != "alpha" {
		t.Errorf("title changed unexpectedly to %q", updated.Title)
	}

	if _, err := svc.UpdateProject(context.Background(), "no-such", &services.UpdateProjectRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	svc := newProjectServiceForTest(t)
	project := mustCreateProject(t, svc, "alpha")

	if err := svc.DeleteProject(context.Background(), project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if err := svc.DeleteProject(context.Background(), project.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete should be not-found, got %v", err)
	}
}

func TestReorderProject(t *testing.T) {
	svc := newProjectServiceForTest(t)
	alpha := mustCreateProject(t, svc, "alpha")
	mustCreateProject(t, svc, "beta")
	mustCreateProject(t, svc, "gamma")

	reordered, err := svc.ReorderProject(context.Background(), &services.ReorderProjectRequest{
		ProjectID:   alpha.ID,
		NewPosition: 2,
	})
	if err != nil {
		t.Fatalf("ReorderProject: %v", err)
	}

	wantTitles := []string{"beta", "gamma", "alpha"}
	for i, p := range reordered {
		if p.Title != wantTitles[i] {
			t.Fatalf("position %d = %s, want %s", i, p.Title, wantTitles[i])
		}
		if p.DisplayOrder == nil || *p.DisplayOrder != i {
			t.Errorf("%s display order = %v, want %d", p.Title, p.DisplayOrder, i)
		}
	}

	// Persisted order shows up on a fresh list
	listed, err := svc.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	for i, p := range listed {
		if p.Title != wantTitles[i] {
			t.Fatalf("listed position %d = %s, want %s", i, p.Title, wantTitles[i])
		}
	}

	_, err = svc.ReorderProject(context.Background(), &services.ReorderProjectRequest{ProjectID: "no-such"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestReorderProject_DeletedWhileReordering(t *testing.T) {
	repo := newFakeProjectRepo()
	svc := NewProjectService(repo, &fakeTxManager{}, ordering.NewGroupLocks(), testLogger())

	alpha := mustCreateProject(t, svc, "alpha")
	mustCreateProject(t, svc, "beta")

	// A concurrent delete lands between the existence check and the
	// group snapshot; the target is then missing from its group.
	deleted := false
	repo.beforeList = func() {
		if !deleted {
			deleted = true
			_ = repo.Delete(context.Background(), alpha.ID)
		}
	}

	_, err := svc.ReorderProject(context.Background(), &services.ReorderProjectRequest{
		ProjectID:   alpha.ID,
		NewPosition: 1,
	})
	var mismatch *domain.GroupMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected GroupMismatchError, got %v", err)
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"promptvault/internal/domain"
	"promptvault/internal/httputil"
)

func TestHandleError_StatusAndCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        &domain.NotFoundError{Resource: "folder", ID: "f1"},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "validation",
			err:        &domain.ValidationError{Message: "name is required"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "invalid parent",
			err:        &domain.InvalidParentError{Message: "cannot move a folder into its own descendant"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PARENT_FOLDER",
		},
		{
			name:       "duplicate name",
			err:        &domain.ConflictError{Message: "taken", ResourceType: "folder", ResourceID: "f2"},
			wantStatus: http.StatusConflict,
			wantCode:   "DUPLICATE_NAME",
		},
		{
			name:       "group mismatch",
			err:        &domain.GroupMismatchError{Resource: "prompt", ID: "p1", Group: "folder f1"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "GROUP_MISMATCH",
		},
		{
			name:       "pin cap",
			err:        &domain.PinCapError{Limit: 8},
			wantStatus: http.StatusBadRequest,
			wantCode:   "EASY_ACCESS_LIMIT_REACHED",
		},
		{
			name:       "enhancement failure",
			err:        &domain.EnhancementError{Cause: errors.New("upstream timeout")},
			wantStatus: http.StatusBadGateway,
			wantCode:   "ENHANCEMENT_FAILED",
		},
		{
			name:       "wrapped typed error keeps its mapping",
			err:        fmt.Errorf("reorder: %w", &domain.PinCapError{Limit: 8}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "EASY_ACCESS_LIMIT_REACHED",
		},
		{
			name:       "unknown error becomes 500",
			err:        errors.New("pool exhausted"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var problem httputil.ProblemDetail
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("body is not a problem document: %v", err)
			}
			if problem.ErrorCode != tt.wantCode {
				t.Errorf("code = %q, want %q", problem.ErrorCode, tt.wantCode)
			}
			if problem.Status != tt.wantStatus {
				t.Errorf("problem status = %d, want %d", problem.Status, tt.wantStatus)
			}
		})
	}
}

func TestHandleError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	var problem httputil.ProblemDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("body is not a problem document: %v", err)
	}
	if problem.Detail != "internal server error" {
		t.Errorf("detail leaks internals: %q", problem.Detail)
	}
}

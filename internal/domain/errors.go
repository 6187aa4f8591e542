package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
	Code() string
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

// NotFoundError indicates a folder/prompt/project id did not resolve.
type NotFoundError struct {
	Resource string // "folder", "prompt", "project"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Code() string         { return "NOT_FOUND" }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ValidationError) Code() string         { return "VALIDATION_FAILED" }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidParentError indicates a re-parent that would cycle, or a move
// to the location the folder is already in.
type InvalidParentError struct {
	Message string
}

func (e *InvalidParentError) Error() string        { return e.Message }
func (e *InvalidParentError) StatusCode() int      { return http.StatusBadRequest }
func (e *InvalidParentError) Code() string         { return "INVALID_PARENT_FOLDER" }
func (e *InvalidParentError) Is(target error) bool { return target == ErrValidation }

// ConflictError represents a sibling name collision with details about
// the existing resource.
type ConflictError struct {
	Message      string
	ResourceType string // "folder", "prompt", "project"
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) StatusCode() int      { return http.StatusConflict }
func (e *ConflictError) Code() string         { return "DUPLICATE_NAME" }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// GroupMismatchError indicates a reorder target that exists but does not
// belong to the stated ordering group. Deliberately distinct from NotFound.
type GroupMismatchError struct {
	Resource string
	ID       string
	Group    string
}

func (e *GroupMismatchError) Error() string {
	return fmt.Sprintf("%s %s does not belong to %s", e.Resource, e.ID, e.Group)
}
func (e *GroupMismatchError) StatusCode() int      { return http.StatusBadRequest }
func (e *GroupMismatchError) Code() string         { return "GROUP_MISMATCH" }
func (e *GroupMismatchError) Is(target error) bool { return target == ErrValidation }

// PinCapError indicates an attempt to pin a prompt past the cap.
type PinCapError struct {
	Limit int
}

func (e *PinCapError) Error() string {
	return fmt.Sprintf("easy access list is full (maximum %d prompts)", e.Limit)
}
func (e *PinCapError) StatusCode() int      { return http.StatusBadRequest }
func (e *PinCapError) Code() string         { return "EASY_ACCESS_LIMIT_REACHED" }
func (e *PinCapError) Is(target error) bool { return target == ErrValidation }

// EnhancementError indicates the external enhancement call failed or
// timed out. Non-fatal to the process; carries the underlying cause.
type EnhancementError struct {
	Cause error
}

func (e *EnhancementError) Error() string {
	return fmt.Sprintf("enhancement failed: %v", e.Cause)
}
func (e *EnhancementError) StatusCode() int { return http.StatusBadGateway }
func (e *EnhancementError) Code() string    { return "ENHANCEMENT_FAILED" }
func (e *EnhancementError) Unwrap() error   { return e.Cause }

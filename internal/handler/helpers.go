package handler

import (
	"errors"
	"net/http"

	"promptvault/internal/domain"
	"promptvault/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondProblem(w, httpErr.StatusCode(), httpErr.Error(), httpErr.Code())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondProblem(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondProblem(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondProblem(w, http.StatusConflict, err.Error(), "DUPLICATE_NAME")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HandleCreateConflict handles conflicts during creation by returning the
// existing resource with 409. If the error is a ConflictError, it calls
// fetchFn to retrieve the existing resource.
func HandleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func() (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		existing, fetchErr := fetchFn()
		if fetchErr != nil {
			handleError(w, fetchErr)
			return
		}

		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}

	handleError(w, err)
}

// pathID extracts the {id} path value, writing a 400 when it is missing.
// The bool reports whether the caller may proceed.
func pathID(w http.ResponseWriter, r *http.Request, resource string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, resource+" ID is required")
		return "", false
	}
	return id, true
}

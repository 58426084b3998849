package github

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
)

// Sentinel errors callers branch on with errors.Is.
var (
	// ErrNoReleases indicates the repository has no published releases.
	ErrNoReleases = errors.New("no releases found")
	// ErrUnauthorized indicates the token is missing, expired, or lacks
	// the required scopes.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUpdateConflict indicates a write raced with a concurrent
	// update and must be retried from fresh state.
	ErrUpdateConflict = errors.New("update conflict")
)

// statusCode extracts the HTTP status from a go-github error, 0 when
// the error carries none.
func statusCode(err error) int {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}

// apiError wraps err with the failing action and folds well-known HTTP
// statuses into the matching sentinel.
func apiError(action string, err error) error {
	switch statusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("failed to %s: %w: %w", action, ErrUnauthorized, err)
	case http.StatusNotFound:
		return fmt.Errorf("failed to %s: %w: %w", action, ErrNotFound, err)
	case http.StatusConflict:
		return fmt.Errorf("failed to %s: %w: %w", action, ErrUpdateConflict, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

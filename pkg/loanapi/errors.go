package loanapi

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for any non-2xx answer from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("loanapi: %s %s: remote error %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("loanapi: %s %s: remote error %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err wraps a 401 APIError.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ErrUnsuccessful marks envelopes that came back with "success": false.
var ErrUnsuccessful = errors.New("loanapi: backend reported failure")

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
)

// UnauthorizedMessage is the uniform message for 401 responses.
const UnauthorizedMessage = "Unauthorized. Please login again."

// APIError is a non-2xx response from the backend. It unwraps to the
// errdefs class matching its status code, so callers can use
// errdefs.IsNotFound, errdefs.IsUnauthorized and friends.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	class      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.class
}

// errorBody covers the error shapes the backend emits.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		class:      classify(status),
	}

	if status == http.StatusUnauthorized {
		e.Message = UnauthorizedMessage
		return e
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		for _, m := range []string{eb.Detail, eb.Message, eb.Error} {
			if m != "" {
				e.Message = m
				break
			}
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func classify(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return errdefs.ErrInvalidArgument
	case status == http.StatusUnauthorized:
		return errdefs.ErrUnauthenticated
	case status == http.StatusForbidden:
		return errdefs.ErrPermissionDenied
	case status == http.StatusNotFound:
		return errdefs.ErrNotFound
	case status == http.StatusConflict:
		return errdefs.ErrConflict
	case status == http.StatusTooManyRequests:
		return errdefs.ErrResourceExhausted
	case status >= 500:
		return errdefs.ErrUnavailable
	default:
		return errdefs.ErrUnknown
	}
}

// transportError marks network failures as unavailable.
func transportError(method, path string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", method, path, errdefs.ErrUnavailable, err)
}

// Message returns the user-facing message of err: the backend's own
// message for API errors, err.Error() otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// StatusCode returns the backend's HTTP status for API errors, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

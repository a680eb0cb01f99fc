package tracker

import (
	"context"
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the tracking service. The
// service returns JSON bodies with a "detail" message.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int
	// Message is the error description from the service.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 response, meaning the flow
// cell is not registered yet.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsConflict reports whether err is a 409 response.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 409
}

// IsAuthFailure reports whether err is a 401 or 403 response. Retrying
// with the same token cannot succeed.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403)
}

// IsTransient reports whether err is worth retrying: rate limits (429),
// server errors (5xx), and transport failures such as connection resets
// or timeouts. Client errors and cancellation are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return true
}

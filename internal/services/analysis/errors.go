package analysis

import (
	"fmt"
	"net/http"
)

// APIError represents a non-200 response from the analysis service.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("analysis API error %d on %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// Retryable reports whether the request may be retried. Server-side failures
// and throttling are retryable; client errors are not.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

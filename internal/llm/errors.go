package llm

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// APIError is a non-success reply from a provider.
type APIError struct {
	Provider   Provider
	StatusCode int
	Body       string
	Err        error // underlying SDK error, if any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a failed call is worth repeating: rate limits,
// server errors, and network timeouts.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

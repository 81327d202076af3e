package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// APIError is a non-2xx reply from a downstream service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("downstream returned %d: %s", e.StatusCode, e.Body)
}

// ErrNotFound marks a downstream 404.
var ErrNotFound = errors.New("resource not found")

// IsTransient reports whether an error is worth retrying: timeouts,
// connection failures and 5xx/429 replies. Validation rejections (other 4xx)
// are permanent and must fail fast.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}

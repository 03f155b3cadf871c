package crawler

import (
	"context"
	"errors"
	"net/http"
)

// ShouldRetryError reports whether a transport error is worth the single
// retry. Cancellation never is.
func ShouldRetryError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// ShouldRetryStatus covers server-side faults. 403/429 answers depend on
// their reason and are sorted out by the platform client.
func ShouldRetryStatus(code int) bool {
	return code >= 500 && code <= 599 || code == http.StatusRequestTimeout
}

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// StatusError is implemented by errors that carry an HTTP-like status code.
type StatusError interface {
	error
	StatusCode() int
}

// HTTPError is a plain StatusError
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

func (e *HTTPError) StatusCode() int { return e.Status }

var retryableStatus = map[int]bool{
	http.StatusConflict:            true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Status extracts the status code of err, if any.
func Status(err error) (int, bool) {
	var se StatusError
	if errors.As(err, &se) {
		return se.StatusCode(), true
	}
	return 0, false
}

// IsRetryable reports whether err is worth another attempt. Errors without a
// status (network failures, unknown errors) are retried; errors with a status
// are retried only for conflicts, rate limiting and server failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if code, ok := Status(err); ok {
		return retryableStatus[code]
	}
	return true
}

// IsInaccessible reports whether err means the object cannot be read at all.
func IsInaccessible(err error) bool {
	code, ok := Status(err)
	return ok && (code == http.StatusNotFound || code == http.StatusForbidden)
}

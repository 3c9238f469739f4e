package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNoCredentials is returned when a provider has no API key to send.
var ErrNoCredentials = errors.New("no API credentials configured")

// StatusError is a non-2xx response from a provider API.
type StatusError struct {
	StatusCode int
	Body       string
	// RetryAfter is the server's Retry-After hint, or 0.
	RetryAfter time.Duration
}

// NewStatusError builds a StatusError from a response's status, body and
// headers.
func NewStatusError(statusCode int, body string, header http.Header) *StatusError {
	return &StatusError{
		StatusCode: statusCode,
		Body:       body,
		RetryAfter: parseRetryAfter(header.Get("Retry-After")),
	}
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if delay := time.Until(at); delay > 0 {
			return delay
		}
	}
	return 0
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the status usually clears on its own: rate
// limits, overload and transient server failures.
func (e *StatusError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		529: // overloaded
		return true
	}
	return false
}

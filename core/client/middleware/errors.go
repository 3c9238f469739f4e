package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
)

// ErrRetryExhausted is returned by the retry and rotation middlewares once
// every attempt failed. The last provider error is wrapped alongside it.
var ErrRetryExhausted = errors.New("all retry attempts exhausted")

// IsTransient reports whether err is worth retrying against the same
// credential and model: rate limits, overload, 5xx and network timeouts.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *ai.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsRotatable reports whether another (credential, model) pair might succeed
// where this one failed. Besides transient failures that covers rejected
// keys and unknown models; malformed requests and missing credentials are
// fatal.
func IsRotatable(err error) bool {
	if IsTransient(err) {
		return true
	}

	var statusErr *ai.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

// Package resilience provides retry and circuit breaking for calls to the
// generative-text, email and CRM collaborators.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// TransientError wraps an error that is safe to retry (429, 5xx, network timeout).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// statusCoder is implemented by SDK error types that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

var transientPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
	"overloaded",
	"rate limit",
	"resource exhausted",
}

// IsTransient reports whether err is worth retrying. Domain errors (malformed
// provider output, invalid leads, forbidden transitions, missing identity)
// and context cancellation never are.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if model.IsMalformedResponse(err) || model.IsInvalidLead(err) ||
		model.IsInvalidTransition(err) || model.IsInvalidInput(err) ||
		model.IsNotAuthenticated(err) || model.IsNotFound(err) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return IsTransientHTTPStatus(sc.StatusCode())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status is a retryable
// server-side or throttling failure. 529 is Anthropic's overloaded status.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 425, 429, 500, 502, 503, 504, 529:
		return true
	default:
		return false
	}
}

// Classify labels err as "transient" or "permanent" for logs and reports.
func Classify(err error) string {
	if IsTransient(err) {
		return "transient"
	}
	return "permanent"
}

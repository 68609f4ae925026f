package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// maxBodyInError caps how much of a raw provider response is carried in a ProtocolError.
const maxBodyInError = 512

// AuthConfigError means required provider credentials are missing or malformed.
// It is raised at client construction and is never retryable.
type AuthConfigError struct {
	Provider string
	Missing  []string
}

func (e *AuthConfigError) Error() string {
	return fmt.Sprintf("%s: missing required configuration: %s", e.Provider, strings.Join(e.Missing, ", "))
}

// TransportError covers timeouts, aborts and unreachable hosts. Retryable.
type TransportError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: request timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: transport failure: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError covers non-2xx statuses, non-JSON bodies and provider-reported
// error payloads. The raw body is truncated for diagnosability.
type ProtocolError struct {
	Provider string
	Status   int
	Message  string
	Body     string
}

func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: api error (status %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: api error (status %d): %s", e.Provider, e.Status, e.Body)
}

// NewProtocolError builds a ProtocolError with the body truncated.
func NewProtocolError(provider string, status int, message string, body []byte) *ProtocolError {
	return &ProtocolError{
		Provider: provider,
		Status:   status,
		Message:  message,
		Body:     Truncate(string(body), maxBodyInError),
	}
}

// Truncate shortens s to at most n bytes, marking the cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

// WrapTransport classifies a low-level HTTP error into a TransportError,
// detecting timeouts so callers can treat them as a distinct failure class.
func WrapTransport(provider string, err error) *TransportError {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if !timeout && errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}
	return &TransportError{Provider: provider, Timeout: timeout, Err: err}
}

// IsRetryable reports whether a failed call may be retried. Transport
// failures and server-side (5xx) protocol errors are transient; client
// errors and provider-reported application errors are not.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Status >= 500
	}
	return false
}

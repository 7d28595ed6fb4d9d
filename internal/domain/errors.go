package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNoSelection indicates a label request was made without any selected rows
	ErrNoSelection = errors.New("no orders selected")

	// ErrRequestInFlight indicates a label request is already running
	ErrRequestInFlight = errors.New("a label request is already in progress")

	// ErrServerOffline indicates the label server is unreachable
	ErrServerOffline = errors.New("label server is unreachable")

	// ErrAuthFailed indicates the session cookie or CSRF token was rejected
	ErrAuthFailed = errors.New("session is invalid or expired")

	// ErrUnsupportedResponse indicates the server answered with an unknown content type
	ErrUnsupportedResponse = errors.New("unsupported response type")

	// ErrUnexpectedResponse indicates a JSON body with neither a message nor an error
	ErrUnexpectedResponse = errors.New("unexpected response from server")

	// ErrNotConfigured indicates no order source is configured
	ErrNotConfigured = errors.New("no order source configured")
)

// RequestError is a label request rejected by the server
type RequestError struct {
	Status  int      // HTTP status, 200 for an error payload in a successful response
	Message string   // Server-provided error text
	Details []string // Per-batch errors, if the server reported any
}

// Error implements the error interface
func (e *RequestError) Error() string {
	var b strings.Builder
	if e.Status != 0 && e.Status != 200 {
		fmt.Fprintf(&b, "error (%d): %s", e.Status, e.Message)
	} else {
		fmt.Fprintf(&b, "error: %s", e.Message)
	}
	if len(e.Details) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Details, "; "))
		b.WriteString("]")
	}
	return b.String()
}

// IsAuth reports whether the server rejected the session
func (e *RequestError) IsAuth() bool {
	return e.Status == 401 || e.Status == 403
}

package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrConfirmationDeclined = errors.New("confirmation declined")
	ErrNoSelection          = errors.New("no database selected")
)

// ValidationError is raised before any request is issued.
// It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for a form field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransportError means the request could not complete (dial failure, timeout,
// cancelled context, undecodable body).
type TransportError struct {
	Op  string // e.g. "fetch users", "execute query"
	Err error

	// Permanent marks failures another attempt cannot fix: a bad URL, an
	// unencodable body or a response that does not decode.
	Permanent bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether another attempt could succeed.
func (e *TransportError) IsRetryable() bool {
	return !e.Permanent
}

// ServerError is a non-success HTTP status from the gateway.
// Message is the body's "error" field, or the generic per-operation fallback.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// IsRetryable reports true only for 5xx responses.
func (e *ServerError) IsRetryable() bool {
	return e.Status >= 500
}

// Unwrap maps well-known statuses onto the sentinel errors so callers can
// use errors.Is(err, ErrNotFound).
func (e *ServerError) Unwrap() error {
	switch e.Status {
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	}
	return nil
}

// UserMessage converts any error into the text shown to the operator.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Error()
	}
	return strings.TrimSpace(err.Error())
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

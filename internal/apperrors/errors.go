// Package apperrors defines the sentinel errors shared by services and the
// HTTP layer. Callers match them with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized       = errors.New("Unauthorized")
	ErrForbidden          = errors.New("Not allowed")
	ErrNotFound           = errors.New("Not found")
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("Email exists")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("Invalid creds")
	ErrDomainNotAllowed   = errors.New("email domain not allowed")
	ErrUpstreamAuth       = errors.New("Invalid ID token")

	// ErrPersistenceUnavailable is only produced while the connection
	// supervisor is still looking for a database.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	ErrStorageUnavailable     = errors.New("storage not configured")
)

// Error pairs a sentinel kind with the message shown to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// New returns an error matching kind whose client-facing text is msg.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with fmt formatting.
func Newf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns the text an API client should see for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	for _, s := range []error{
		ErrUnauthorized, ErrForbidden, ErrNotFound, ErrValidation, ErrDuplicateEmail,
		ErrDuplicate, ErrInvalidCredentials, ErrDomainNotAllowed, ErrUpstreamAuth,
		ErrStorageUnavailable,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "Server error"
}

// HTTPStatus maps err to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrUpstreamAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrDomainNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ErrPersistenceUnavailable), errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Package apperror defines the closed set of failures the API reports to clients.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind int

const (
	Validation Kind = iota + 1
	Authentication
	Authorization
	NotFound
	Conflict
)

var kindNames = map[Kind]string{
	Validation:     "ValidationError",
	Authentication: "AuthenticationError",
	Authorization:  "AuthorizationError",
	NotFound:       "NotFoundError",
	Conflict:       "ConflictError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Status is the HTTP status code reported for the kind.
func (k Kind) Status() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case Authorization:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure whose message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Status is the HTTP status code for the error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewValidation(format string, args ...any) *Error {
	return New(Validation, format, args...)
}

func NewAuthentication(format string, args ...any) *Error {
	return New(Authentication, format, args...)
}

func NewAuthorization(format string, args ...any) *Error {
	return New(Authorization, format, args...)
}

func NewNotFound(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

func NewConflict(format string, args ...any) *Error {
	return New(Conflict, format, args...)
}

// As returns the classified error inside err, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries a classified error of the given kind.
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

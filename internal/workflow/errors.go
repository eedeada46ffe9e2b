// Package workflow owns the hiring workflow engine: the job post
// publication lifecycle, the application review lifecycle, and the
// authorization and invariant rules guarding every transition.
package workflow

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a workflow failure so the HTTP boundary can map it to a
// status code without inspecting messages.
type Kind int

const (
	// KindNotFound means the referenced entity id is unknown
	KindNotFound Kind = iota + 1
	// KindUnauthorized means the principal lacks ownership or role
	KindUnauthorized
	// KindInvalidTransition means the state machine rejects the move
	KindInvalidTransition
	// KindPreconditionFailed means a business precondition does not hold
	// (deadline expired, duplicate application, résumé not owned, ...)
	KindPreconditionFailed
	// KindBadRequest means malformed input (unknown status value, empty id list)
	KindBadRequest
)

// Error is a recoverable, typed workflow failure returned to the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// HTTPStatus maps the error kind to the status code served at the boundary.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func notFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func invalidTransition(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func preconditionFailed(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPreconditionFailed, Message: fmt.Sprintf(format, args...)}
}

func badRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// AsError unwraps a workflow error from err, or nil when err is an
// unexpected (persistence) failure that should surface as a server error.
func AsError(err error) *Error {
	var we *Error
	if errors.As(err, &we) {
		return we
	}
	return nil
}

// IsKind reports whether err is a workflow error of the given kind.
func IsKind(err error, kind Kind) bool {
	we := AsError(err)
	return we != nil && we.Kind == kind
}

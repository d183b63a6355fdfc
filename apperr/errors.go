// Package apperr defines the error taxonomy shared by the REST and socket
// boundaries. Every domain failure carries a Kind so the boundary can pick an
// HTTP status (or a socket error payload) without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindValidation marks requests rejected before any store access.
	KindValidation Kind = iota + 1
	// KindAuthorization marks identity mismatches, missing membership or
	// insufficient role. No mutation has been attempted.
	KindAuthorization
	// KindNotFound marks an absent user, group, message or request.
	KindNotFound
	// KindConflict marks domain conflicts: already recalled, recall window
	// expired, duplicate friend request, self-targeting.
	KindConflict
	// KindDependency marks store or blob failures. Surfaced to callers as a
	// generic failure.
	KindDependency
)

// Error is the application error type. It satisfies errors.Is/As chains via
// Unwrap so service code can wrap store errors with %w as usual.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps a store/blob error with a caller-safe message.
func Dependency(err error, message string) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors are
// treated as dependency failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependency
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the caller-visible message for err. Dependency failures
// are masked; their detail belongs in logs, not in responses.
func UserMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindDependency {
		return appErr.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error chain to the HTTP status the REST boundary should
// respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller. Kinds are stable and map 1:1 to
// an HTTP status at the handler boundary.
type Kind string

const (
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindAccountLocked       Kind = "account_locked"
	KindUnauthenticated     Kind = "unauthenticated"
	KindForbidden           Kind = "forbidden"
	KindNotFound            Kind = "not_found"
	KindValidationFailed    Kind = "validation_failed"
	KindQuotaExceeded       Kind = "quota_exceeded"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindConflict            Kind = "conflict"
	KindInternal            Kind = "internal"
)

// Error is the single error type returned across service and middleware
// boundaries. Err carries the internal cause and is never shown to callers.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Reason
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind and, when set on the target, Reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// New creates an Error without an internal cause.
func New(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

// Wrap creates an Error carrying err as its internal cause.
func Wrap(kind Kind, reason, message string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message, Err: err}
}

// Validation names the offending field and the violated constraint.
func Validation(field, constraint string) *Error {
	return &Error{
		Kind:    KindValidationFailed,
		Reason:  constraint,
		Field:   field,
		Message: fmt.Sprintf("field '%s' failed on the '%s' constraint", field, constraint),
	}
}

func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "invalid_credentials", "Invalid email or password")
}

func AccountLocked() *Error {
	return New(KindAccountLocked, "account_locked", "Account is temporarily locked, try again later")
}

func Unauthenticated(reason string) *Error {
	return New(KindUnauthenticated, reason, "Authentication required")
}

func Forbidden(reason string) *Error {
	return New(KindForbidden, reason, "Access denied")
}

func NotFound(resource string) *Error {
	return New(KindNotFound, resource+"_not_found", resource+" not found")
}

func Conflict(reason, message string) *Error {
	return New(KindConflict, reason, message)
}

func QuotaExceeded(reason, message string) *Error {
	return New(KindQuotaExceeded, reason, message)
}

func Upstream(reason string, err error) *Error {
	return Wrap(KindUpstreamUnavailable, reason, "A dependent service is unavailable, try again later", err)
}

func Internal(err error) *Error {
	return Wrap(KindInternal, "internal_error", "Internal server error", err)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the Kind of err, treating unknown errors as Internal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// From converts any error into an *Error. Timeouts and cancellations become
// UpstreamUnavailable; anything unrecognised becomes Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Upstream("timeout", err)
	}
	return Internal(err)
}

package domain

import (
	"errors"
	"strings"
)

// ErrorKind classifies why a dispatch did not produce a successful outcome.
type ErrorKind string

const (
	KindInvalidArgument       ErrorKind = "INVALID_ARGUMENT"
	KindPermissionDenied      ErrorKind = "PERMISSION_DENIED"
	KindTransientSendFailure  ErrorKind = "TRANSIENT_SEND_FAILURE"
	KindPermissionQueryFailed ErrorKind = "PERMISSION_QUERY_FAILED"
)

func (k ErrorKind) String() string { return string(k) }

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrTransientSendFailure  = errors.New("send failed")
	ErrPermissionQueryFailed = errors.New("permission query failed")
)

// PermissionHint is the remediation text attached to PermissionDenied failures.
const PermissionHint = "grant SMS permission in app settings"

// DispatchError is the structured failure returned at the dispatcher boundary.
type DispatchError struct {
	Kind    ErrorKind
	Message string
	Hint    string
	Cause   error
}

func NewDispatchError(kind ErrorKind, message string, cause error) *DispatchError {
	e := &DispatchError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
	if kind == KindPermissionDenied {
		e.Hint = PermissionHint
	}
	return e
}

func (e *DispatchError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 3)
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	} else {
		parts = append(parts, sentinelFor(e.Kind).Error())
	}
	if e.Hint != "" {
		parts = append(parts, e.Hint)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *DispatchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches the kind sentinel, so callers can use errors.Is(err, ErrPermissionDenied).
func (e *DispatchError) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == sentinelFor(e.Kind)
}

// KindOf returns the ErrorKind carried by err, or "" when err is not a dispatch failure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var dispatchErr *DispatchError
	if errors.As(err, &dispatchErr) {
		return dispatchErr.Kind
	}

	switch {
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrPermissionQueryFailed):
		return KindPermissionQueryFailed
	case errors.Is(err, ErrTransientSendFailure):
		return KindTransientSendFailure
	}
	return ""
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindPermissionQueryFailed:
		return ErrPermissionQueryFailed
	default:
		return ErrTransientSendFailure
	}
}

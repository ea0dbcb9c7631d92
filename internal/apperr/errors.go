package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindPhaseViolation  Kind = "phase_violation"
	KindAuthorization   Kind = "authorization"
	KindExternalService Kind = "external_service"
	KindState           Kind = "state"
)

// Error is a classified domain failure. Details are merged into the HTTP response body.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// With attaches a detail field and returns the same error.
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func NotFound(format string, args ...any) *Error   { return newf(KindNotFound, format, args...) }
func Conflict(format string, args ...any) *Error   { return newf(KindConflict, format, args...) }
func Phase(format string, args ...any) *Error      { return newf(KindPhaseViolation, format, args...) }
func Forbidden(format string, args ...any) *Error  { return newf(KindAuthorization, format, args...) }
func State(format string, args ...any) *Error      { return newf(KindState, format, args...) }

// External wraps a failure of a remote collaborator. These are safe to retry.
func External(err error, format string, args ...any) *Error {
	e := newf(KindExternalService, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Retryable(err error) bool {
	return KindOf(err) == KindExternalService
}

// HTTPStatus maps a kind to a response status; unclassified errors are 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindPhaseViolation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindState:
		return http.StatusConflict
	case KindAuthorization:
		return http.StatusForbidden
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

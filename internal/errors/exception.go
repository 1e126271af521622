package errors

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindUnauthenticated   Kind = "unauthenticated"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindConflictRetry     Kind = "conflict_retry"
	KindDependencyFailure Kind = "dependency_failure"
	KindRateLimited       Kind = "rate_limited"
)

var kindStatus = map[Kind]int{
	KindValidation:        http.StatusBadRequest,
	KindUnauthenticated:   http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindNotFound:          http.StatusNotFound,
	KindInvalidTransition: http.StatusBadRequest,
	KindConflictRetry:     http.StatusConflict,
	KindDependencyFailure: http.StatusInternalServerError,
	KindRateLimited:       http.StatusTooManyRequests,
}

type Exception struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Exception) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Exception) Unwrap() error {
	return e.Err
}

// Is matches another exception of the same kind and message, so a sentinel
// still matches after a cause was attached to a copy of it.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// WithCause returns a copy of e wrapping err.
func (e *Exception) WithCause(err error) *Exception {
	c := *e
	c.Err = err
	return &c
}

func New(kind Kind, message string) *Exception {
	return &Exception{
		Kind:       kind,
		Message:    message,
		StatusCode: kindStatus[kind],
	}
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// KindOf returns the kind of the first Exception in err's chain. Untyped
// errors are reported as dependency failures.
func KindOf(err error) Kind {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependencyFailure
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether the caller may re-read and repeat the operation.
func IsRetryable(err error) bool {
	return IsKind(err, KindConflictRetry)
}

package errors

import "fmt"

func Validation(format string, args ...any) *Exception {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Forbidden(message string) *Exception {
	return New(KindForbidden, message)
}

func NotFound(entity string) *Exception {
	return New(KindNotFound, entity+" not found")
}

func InvalidTransition(entity string, from, to any) *Exception {
	return New(KindInvalidTransition, fmt.Sprintf("%s cannot move from %v to %v", entity, from, to))
}

func Dependency(message string, err error) *Exception {
	return New(KindDependencyFailure, message).WithCause(err)
}

package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a missing row or a missing referenced parent. Store
// errors that are not one of the sentinels below propagate unmodified.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized reports a missing or invalid identity on an endpoint that
// requires one.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError is raised by the service layer before any store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

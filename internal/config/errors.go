package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every FieldError.
var ErrInvalid = errors.New("invalid configuration")

// FieldError reports a single rejected setting.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

func invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

package app

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed application.
var ErrClosed = errors.New("application closed")

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

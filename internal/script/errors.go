package script

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrTimeout is returned when a script runs past its deadline.
	ErrTimeout = errors.New("script execution timeout")

	// ErrModuleNotAllowed is raised by require for modules outside the sandbox.
	ErrModuleNotAllowed = errors.New("module is not available")
)

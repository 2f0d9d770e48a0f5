package engine

import "errors"

// Errors returned by editor operations.
var (
	// ErrClosed indicates an operation on a closed editor.
	ErrClosed = errors.New("editor is closed")

	// ErrEmptyContext indicates a missing context id.
	ErrEmptyContext = errors.New("context id is empty")

	// ErrContextOpen indicates a registry already holds an editor for the context.
	ErrContextOpen = errors.New("context already open")

	// ErrContextNotFound indicates the registry holds no editor for the context.
	ErrContextNotFound = errors.New("context not found")

	// ErrProbe wraps media probe failures that abort an add.
	ErrProbe = errors.New("media probe failed")
)

package timeline

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a timeline error for programmatic handling.
type Code int

const (
	// CodeUnknown is the zero value.
	CodeUnknown Code = iota
	// CodeNotFound indicates an unknown track or element id.
	CodeNotFound
	// CodeMalformedID indicates an id outside its namespace.
	CodeMalformedID
	// CodeInvalidTiming indicates a start/end extent that breaks end > start >= 0.
	CodeInvalidTiming
	// CodeInvalidType indicates an unknown element type or an operation the type does not support.
	CodeInvalidType
	// CodeDuplicateID indicates an element id already present in the track.
	CodeDuplicateID
	// CodeInvalidProps indicates a variant property check failed.
	CodeInvalidProps
)

// String returns the string representation of the code.
func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not_found"
	case CodeMalformedID:
		return "malformed_id"
	case CodeInvalidTiming:
		return "invalid_timing"
	case CodeInvalidType:
		return "invalid_type"
	case CodeDuplicateID:
		return "duplicate_id"
	case CodeInvalidProps:
		return "invalid_props"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per code. Error and ValidationError unwrap to these.
var (
	ErrNotFound      = errors.New("not found")
	ErrMalformedID   = errors.New("malformed id")
	ErrInvalidTiming = errors.New("invalid timing")
	ErrInvalidType   = errors.New("invalid element type")
	ErrDuplicateID   = errors.New("duplicate element id")
	ErrInvalidProps  = errors.New("invalid element properties")
)

func sentinel(c Code) error {
	switch c {
	case CodeNotFound:
		return ErrNotFound
	case CodeMalformedID:
		return ErrMalformedID
	case CodeInvalidTiming:
		return ErrInvalidTiming
	case CodeInvalidType:
		return ErrInvalidType
	case CodeDuplicateID:
		return ErrDuplicateID
	case CodeInvalidProps:
		return ErrInvalidProps
	default:
		return nil
	}
}

// Error is a typed timeline error carrying a Code.
type Error struct {
	Code Code
	Op   string
	ID   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %q: %s", e.Op, e.ID, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return sentinel(e.Code)
}

// NotFound builds a CodeNotFound error.
func NotFound(op, id string) *Error {
	return &Error{Code: CodeNotFound, Op: op, ID: id, Err: ErrNotFound}
}

// CodeOf extracts the Code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return CodeUnknown
}

// ValidationError is the structured result of element validation.
// Errors block the mutation that triggered validation; warnings do not.
type ValidationError struct {
	// Code classifies the first recorded error.
	Code     Code
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation passed with warnings: " + strings.Join(e.Warnings, "; ")
	}
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Unwrap returns the sentinel for Code, so errors.Is(err, ErrInvalidTiming) works.
func (e *ValidationError) Unwrap() error {
	return sentinel(e.Code)
}

// HasErrors returns true if any blocking error was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) fail(code Code, format string, args ...any) {
	if len(e.Errors) == 0 {
		e.Code = code
	}
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warn(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

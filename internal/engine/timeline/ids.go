package timeline

import (
	"strings"

	"github.com/google/uuid"
)

// Identifier prefixes. Element and track ids never share a prefix.
const (
	ElementIDPrefix = "e-"
	TrackIDPrefix   = "t-"
)

// NewElementID mints a fresh element id.
func NewElementID() string {
	return ElementIDPrefix + uuid.NewString()
}

// NewTrackID mints a fresh track id.
func NewTrackID() string {
	return TrackIDPrefix + uuid.NewString()
}

// IsElementID reports whether id is in the element namespace.
func IsElementID(id string) bool {
	return len(id) > len(ElementIDPrefix) && strings.HasPrefix(id, ElementIDPrefix)
}

// IsTrackID reports whether id is in the track namespace.
func IsTrackID(id string) bool {
	return len(id) > len(TrackIDPrefix) && strings.HasPrefix(id, TrackIDPrefix)
}

// ValidateElementID returns a CodeMalformedID error if id is not an element id.
func ValidateElementID(id string) error {
	if !IsElementID(id) {
		return &Error{Code: CodeMalformedID, Op: "validate element id", ID: id, Err: ErrMalformedID}
	}
	return nil
}

// ValidateTrackID returns a CodeMalformedID error if id is not a track id.
func ValidateTrackID(id string) error {
	if !IsTrackID(id) {
		return &Error{Code: CodeMalformedID, Op: "validate track id", ID: id, Err: ErrMalformedID}
	}
	return nil
}

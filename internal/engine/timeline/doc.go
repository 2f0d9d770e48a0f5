// Package timeline provides the element model and editing operations for the
// timeline engine.
//
// A Track is an ordered container of time-positioned elements. Elements are a
// closed set of variants (video, audio, image, text, caption, circle, rect,
// icon, placeholder) that share a time extent [start, end) and carry a
// variant-specific property bag.
//
// # Operations
//
// Operations are implemented as visitors. Every variant implements Accept,
// which forwards to the matching method of a Visitor:
//
//	type Visitor interface {
//	    VisitVideo(*Video) error
//	    VisitAudio(*Audio) error
//	    ...
//	}
//
// Adding an operation means writing one visitor that handles every variant.
// Adding a variant means extending Visitor, which the compiler then enforces
// for every existing operation. Built-in operations:
//
//   - Add: assigns missing ids and default timing, validates, appends
//   - Remove: deletes by id, no-op when absent
//   - Update: validates, then replaces by id
//   - Split: divides video, audio and caption elements at an interior time
//   - Clone: explicit per-variant deep copy, optionally with a fresh id
//   - Validate: layered structural checks producing errors and warnings
//
// # Privileged Mutation
//
// Tracks expose read-only accessors publicly. Accessors return detached
// copies, so nothing outside this package can change a stored element.
// The raw mutation primitives live on an accessor that only the Track
// constructs and only the operation visitors in this package use:
//
//	a := track.privileged()
//	a.addRaw(el, -1)
//
// # Identifiers
//
// Element ids start with "e-" and track ids with "t-". Callers rely on the
// prefix to classify an arbitrary id without a lookup.
package timeline

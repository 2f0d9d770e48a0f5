// Package history provides linear undo/redo over timeline documents.
//
// History keeps three stacks of whole documents:
//
//	past    (bounded, oldest dropped)  <- undo pops from here
//	present (single slot)
//	future                             <- redo pops from here
//
// Commit pushes the old present onto past, installs the new document and
// discards future: a new edit invalidates every undone state. Undo and Redo
// move one document between the stacks and return the new present, which the
// caller reinstates verbatim (including its version).
//
// Documents are shared, not copied. Callers must treat committed documents
// as immutable, which the Editor guarantees by copy-on-write of tracks.
//
// # Grouping
//
// Several commits can be combined into one undo unit:
//
//	h.BeginGroup("script")
//	// ... several commits ...
//	h.EndGroup(ctx)
//
// Only the first commit of a group pushes onto past; later commits replace
// present in place. Rollback abandons an open group and reinstates all three
// stacks as they were at BeginGroup. Undo and Redo inside a group work until
// the group's first commit and fail with ErrGroupChanged after it.
//
// # Persistence
//
// With WithStore the full {past, present, future} triple is saved under a
// key after every transition. Init restores a saved triple, which takes
// priority over the caller's initial document when resume is requested.
// Persistence failures are logged and never fail an edit.
package history

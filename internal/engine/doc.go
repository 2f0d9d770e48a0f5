// Package engine provides the timeline editor facade.
//
// An Editor owns one context of a shared document store. It combines the
// operation visitors of the timeline package, the history manager and the
// media probe into the operations callers invoke, and publishes a change
// event after every committed mutation.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - timeline: element variants, operation visitors, validator and tracks
//   - document: documents and the per-context document store
//   - history: bounded undo/redo with optional durable snapshots
//   - wire: the JSON wire format consumed by renderers and persistence
//   - probe: media metadata lookup for default element lengths
//
// # Thread Safety
//
// All Editor operations are thread-safe. Mutations copy the affected track
// and store a new document, so readers never observe a partially applied
// operation.
//
// # Basic Usage
//
//	e, _ := engine.New(ctx, "session-1")
//
//	track, _ := e.AddTrack(ctx, "main")
//
//	video := timeline.NewVideo("clip.mp4")
//	video.SetTiming(0, 5)
//	el, _ := e.AddElement(ctx, track.ID(), video)
//
//	res, _ := e.SplitElement(ctx, track.ID(), el.ID(), 2)
//	// res.First spans 0-2, res.Second spans 2-5
//
//	e.Undo(ctx) // the unsplit video is back
//	e.Redo(ctx) // the split pair is back
//
// Group several operations into a single undo unit:
//
//	e.Batch(ctx, "rough cut", func() error {
//	    ...
//	})
//
// # Registry
//
// A Registry opens and closes editors for context ids over one document
// store and offers read-only lookup of the live editors.
//
// # Error Handling
//
// Validation failures surface as *timeline.ValidationError and malformed or
// unknown ids as *timeline.Error; neither changes the document. Operations
// on an absent element report false rather than an error.
//
//   - ErrClosed: operation on a closed editor
//   - ErrContextOpen: registry already holds the context
//   - ErrContextNotFound: registry does not hold the context
//   - ErrProbe: media probe failed while adding an element
package engine

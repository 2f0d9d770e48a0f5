package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/history"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/probe"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/wire"
	"github.com/ncounterspecialist/twick-sub001/internal/event"
	"github.com/ncounterspecialist/twick-sub001/internal/event/topic"
	"github.com/ncounterspecialist/twick-sub001/internal/metrics"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

const tracerName = "github.com/ncounterspecialist/twick-sub001/internal/engine"

// Re-export commonly used types for convenience.
type (
	// Document is the full editable state of a context.
	Document = document.Document

	// Element is a timed item on a track.
	Element = timeline.Element

	// Track is an ordered container of elements.
	Track = timeline.Track

	// SplitResult is the outcome of a split.
	SplitResult = timeline.SplitResult
)

// Editor is the mutation facade for one context.
//
// Every successful mutation copies the affected track, applies an operation
// visitor to the copy, stores the new track list as the next document
// version and commits that document to history. Documents already stored are
// never modified, so history entries and readers can share them.
//
// All operations are thread-safe.
type Editor struct {
	mu sync.RWMutex

	contextID string

	// Core components
	store     *document.Store
	history   *history.History
	prober    probe.Prober
	publisher event.Publisher

	// Instrumentation
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics.Recorder

	// Configuration
	maxUndoEntries  int
	defaultDuration float64
	strictSchema    bool
	snapshots       snapshot.Store
	snapshotKey     string
	resume          bool
	initial         *document.Document

	resumed bool
	closed  bool
}

// New creates an editor for contextID and installs its starting document.
//
// When snapshots are configured and resume is enabled, a persisted history
// for the snapshot key takes priority over the initial document; Resumed
// reports whether that happened.
func New(ctx context.Context, contextID string, opts ...Option) (*Editor, error) {
	if contextID == "" {
		return nil, ErrEmptyContext
	}
	e := &Editor{
		contextID:       contextID,
		publisher:       event.Nop{},
		logger:          slog.Default(),
		tracer:          otel.Tracer(tracerName),
		maxUndoEntries:  DefaultMaxUndoEntries,
		defaultDuration: DefaultElementDuration,
		resume:          true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = document.NewStore()
	}
	e.logger = e.logger.With("context", contextID)

	hopts := []history.Option{history.WithLogger(e.logger)}
	if e.snapshots != nil {
		key := e.snapshotKey
		if key == "" {
			key = contextID
		}
		if err := snapshot.ValidateKey(key); err != nil {
			return nil, err
		}
		hopts = append(hopts, history.WithStore(e.snapshots, key))
	}
	e.history = history.New(e.maxUndoEntries, hopts...)

	initial := e.store.Get(contextID)
	if e.initial != nil {
		initial = *e.initial
		if initial.Tracks == nil {
			initial.Tracks = []*timeline.Track{}
		}
	}
	doc, resumed, err := e.history.Init(ctx, initial, e.resume)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}
	e.resumed = resumed
	doc = e.store.Restore(contextID, doc.Tracks, doc.Version)

	e.metrics.SetVersion(contextID, doc.Version)
	e.metrics.SetHistory(contextID, e.history.UndoCount(), e.history.RedoCount())
	e.notify(ctx, "load", doc, change{topic: event.TopicDocumentLoaded})
	return e, nil
}

// ============================================================================
// Read Operations
// ============================================================================

// ContextID returns the context the editor owns.
func (e *Editor) ContextID() string { return e.contextID }

// Resumed returns true if the starting document came from a persisted history.
func (e *Editor) Resumed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.resumed
}

// Document returns a deep copy of the current document.
func (e *Editor) Document() Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Get(e.contextID).Clone()
}

// Version returns the current document version.
func (e *Editor) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Get(e.contextID).Version
}

// Tracks returns copies of the current tracks.
func (e *Editor) Tracks() []*Track {
	return e.Document().Tracks
}

// Track returns a copy of the track with the given id.
func (e *Editor) Track(id string) (*Track, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.store.Get(e.contextID).Track(id)
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Element returns a copy of the element with the given id and the id of
// the track holding it.
func (e *Editor) Element(id string) (Element, string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, el, ok := e.store.Get(e.contextID).FindElement(id)
	if !ok {
		return nil, "", false
	}
	return el, t.ID(), true
}

// CloneElement returns a detached copy of the element with the given id,
// with a fresh id when newID is set. The document is not changed.
func (e *Editor) CloneElement(id string, newID bool) (Element, bool) {
	el, _, ok := e.Element(id)
	if !ok {
		return nil, false
	}
	return timeline.Clone(el, newID), true
}

// MarshalDocument encodes the current document as wire JSON.
func (e *Editor) MarshalDocument() ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return wire.Marshal(e.store.Get(e.contextID))
}

// ============================================================================
// Track Operations
// ============================================================================

// AddTrack appends an empty track and returns a copy of it.
func (e *Editor) AddTrack(ctx context.Context, name string) (*Track, error) {
	t := timeline.NewTrack(name)
	err := e.apply(ctx, "add_track", func(doc Document) (*change, error) {
		tracks := make([]*timeline.Track, 0, len(doc.Tracks)+1)
		tracks = append(tracks, doc.Tracks...)
		tracks = append(tracks, t)
		return &change{tracks: tracks, topic: event.TopicTrackAdded, trackID: t.ID()}, nil
	})
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// RemoveTrack deletes the track with the given id. It returns false if no
// such track exists.
func (e *Editor) RemoveTrack(ctx context.Context, id string) (bool, error) {
	if err := timeline.ValidateTrackID(id); err != nil {
		return false, err
	}
	var removed bool
	err := e.apply(ctx, "remove_track", func(doc Document) (*change, error) {
		i := doc.TrackIndex(id)
		if i < 0 {
			return nil, nil
		}
		tracks := make([]*timeline.Track, 0, len(doc.Tracks)-1)
		tracks = append(tracks, doc.Tracks[:i]...)
		tracks = append(tracks, doc.Tracks[i+1:]...)
		removed = true
		return &change{tracks: tracks, topic: event.TopicTrackRemoved, trackID: id}, nil
	})
	return removed, err
}

// RenameTrack changes the name of a track. It returns false if no such
// track exists.
func (e *Editor) RenameTrack(ctx context.Context, id, name string) (bool, error) {
	if err := timeline.ValidateTrackID(id); err != nil {
		return false, err
	}
	var renamed bool
	err := e.apply(ctx, "rename_track", func(doc Document) (*change, error) {
		t, ok := doc.Track(id)
		if !ok {
			return nil, nil
		}
		renamed = true
		return &change{tracks: doc.WithTrack(t.WithName(name)).Tracks, topic: event.TopicTrackRenamed, trackID: id}, nil
	})
	return renamed, err
}

// ============================================================================
// Element Operations
// ============================================================================

// AddElement validates el and appends a copy of it to a track, returning
// a copy of the stored element.
//
// A missing start defaults to the end of the track's last element. A missing
// end defaults to start plus the probed media duration for video and audio,
// or the default duration otherwise. The probe runs before the editor lock is
// taken and defaults are computed afterwards from the current track.
//
// An unknown track yields a timeline.ErrNotFound error; a failed validation
// yields a *timeline.ValidationError. In both cases nothing changes.
func (e *Editor) AddElement(ctx context.Context, trackID string, el Element) (Element, error) {
	if err := timeline.ValidateTrackID(trackID); err != nil {
		return nil, err
	}
	if el == nil {
		return nil, &timeline.Error{Code: timeline.CodeInvalidType, Op: "add_element", Err: timeline.ErrInvalidType}
	}

	mediaDuration, err := e.probeMedia(ctx, el)
	if err != nil {
		return nil, err
	}

	var added Element
	err = e.apply(ctx, "add_element", func(doc Document) (*change, error) {
		t, ok := doc.Track(trackID)
		if !ok {
			return nil, timeline.NotFound("add_element", trackID)
		}
		cp := t.Clone()
		out, err := timeline.Add(cp, el, timeline.AddOptions{
			DefaultDuration: e.defaultDuration,
			MediaDuration:   mediaDuration,
		})
		if err != nil {
			return nil, err
		}
		e.logWarnings(out)
		added = out
		return &change{tracks: doc.WithTrack(cp).Tracks, topic: event.TopicElementAdded, trackID: trackID, elementID: out.ID()}, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveElement deletes an element from a track. It returns false if the
// track or element does not exist.
func (e *Editor) RemoveElement(ctx context.Context, trackID, elementID string) (bool, error) {
	if err := timeline.ValidateTrackID(trackID); err != nil {
		return false, err
	}
	var removed bool
	err := e.apply(ctx, "remove_element", func(doc Document) (*change, error) {
		t, ok := doc.Track(trackID)
		if !ok || !t.Contains(elementID) {
			return nil, nil
		}
		cp := t.Clone()
		removed = timeline.RemoveByID(cp, elementID)
		return &change{tracks: doc.WithTrack(cp).Tracks, topic: event.TopicElementRemoved, trackID: trackID, elementID: elementID}, nil
	})
	return removed, err
}

// UpdateElement validates el and replaces the element with the same id in
// a track. It returns false if the track or element does not exist.
func (e *Editor) UpdateElement(ctx context.Context, trackID string, el Element) (bool, error) {
	if err := timeline.ValidateTrackID(trackID); err != nil {
		return false, err
	}
	if el == nil {
		return false, &timeline.Error{Code: timeline.CodeInvalidType, Op: "update_element", Err: timeline.ErrInvalidType}
	}
	var updated bool
	err := e.apply(ctx, "update_element", func(doc Document) (*change, error) {
		t, ok := doc.Track(trackID)
		if !ok {
			return nil, nil
		}
		cp := t.Clone()
		ok, err := timeline.Update(cp, el, timeline.UpdateOptions{})
		if err != nil || !ok {
			return nil, err
		}
		stored, _ := cp.ElementByID(el.ID())
		e.logWarnings(stored)
		updated = true
		return &change{tracks: doc.WithTrack(cp).Tracks, topic: event.TopicElementUpdated, trackID: trackID, elementID: el.ID()}, nil
	})
	return updated, err
}

// MoveElement shifts an element so it starts at start, keeping its
// duration. It returns false if the track or element does not exist.
func (e *Editor) MoveElement(ctx context.Context, trackID, elementID string, start float64) (bool, error) {
	if err := timeline.ValidateTrackID(trackID); err != nil {
		return false, err
	}
	var moved bool
	err := e.apply(ctx, "move_element", func(doc Document) (*change, error) {
		t, ok := doc.Track(trackID)
		if !ok {
			return nil, nil
		}
		el, ok := t.ElementByID(elementID)
		if !ok {
			return nil, nil
		}
		el.SetTiming(start, start+el.Duration())
		cp := t.Clone()
		if _, err := timeline.Update(cp, el, timeline.UpdateOptions{}); err != nil {
			return nil, err
		}
		moved = true
		return &change{tracks: doc.WithTrack(cp).Tracks, topic: event.TopicElementUpdated, trackID: trackID, elementID: elementID}, nil
	})
	return moved, err
}

// SplitElement splits an element at the given time. An unsplittable type,
// a time outside the element or an unknown id yields a result with Success
// false and no error; the document is unchanged.
func (e *Editor) SplitElement(ctx context.Context, trackID, elementID string, at float64) (SplitResult, error) {
	if err := timeline.ValidateTrackID(trackID); err != nil {
		return SplitResult{}, err
	}
	var res SplitResult
	err := e.apply(ctx, "split_element", func(doc Document) (*change, error) {
		t, ok := doc.Track(trackID)
		if !ok {
			return nil, nil
		}
		cp := t.Clone()
		r, err := timeline.Split(cp, elementID, at)
		if err != nil || !r.Success {
			return nil, err
		}
		res = r
		return &change{tracks: doc.WithTrack(cp).Tracks, topic: event.TopicElementSplit, trackID: trackID, elementID: elementID}, nil
	})
	if err != nil {
		return SplitResult{}, err
	}
	return res, nil
}

// ============================================================================
// Document Operations
// ============================================================================

// LoadDocument replaces the document with tracks. A non-zero version is
// used verbatim; zero bumps the current version by one. The load is an
// undoable history entry.
func (e *Editor) LoadDocument(ctx context.Context, tracks []*Track, version uint64) error {
	if tracks == nil {
		tracks = []*timeline.Track{}
	}
	seen := make(map[string]bool, len(tracks))
	own := make([]*timeline.Track, len(tracks))
	for i, t := range tracks {
		if t == nil {
			return &timeline.Error{Code: timeline.CodeInvalidType, Op: "load_document", Err: errors.New("nil track")}
		}
		if seen[t.ID()] {
			return &timeline.Error{Code: timeline.CodeDuplicateID, Op: "load_document", ID: t.ID(), Err: timeline.ErrDuplicateID}
		}
		seen[t.ID()] = true
		own[i] = t.Clone()
	}
	return e.apply(ctx, "load_document", func(Document) (*change, error) {
		return &change{tracks: own, version: version, topic: event.TopicDocumentLoaded}, nil
	})
}

// LoadDocumentJSON decodes wire JSON and loads it with its own version.
// With strict schema enabled the input is checked against the wire schema
// first.
func (e *Editor) LoadDocumentJSON(ctx context.Context, data []byte) error {
	decode := wire.Unmarshal
	if e.strictSchema {
		decode = wire.UnmarshalStrict
	}
	doc, err := decode(data)
	if err != nil {
		return err
	}
	return e.LoadDocument(ctx, doc.Tracks, doc.Version)
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo reinstates the previous document with its original version. It
// returns false when there is nothing to undo.
func (e *Editor) Undo(ctx context.Context) (bool, error) {
	return e.travel(ctx, "undo", e.history.Undo, history.ErrNothingToUndo, event.TopicHistoryUndo)
}

// Redo reinstates the next document with its original version. It returns
// false when there is nothing to redo.
func (e *Editor) Redo(ctx context.Context) (bool, error) {
	return e.travel(ctx, "redo", e.history.Redo, history.ErrNothingToRedo, event.TopicHistoryRedo)
}

func (e *Editor) travel(ctx context.Context, op string, step func(context.Context) (document.Document, error), empty error, tp topic.Topic) (bool, error) {
	ctx, span := e.startSpan(ctx, op)
	defer span.End()
	start := time.Now()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false, ErrClosed
	}
	doc, err := step(ctx)
	if errors.Is(err, empty) {
		e.mu.Unlock()
		e.metrics.Observe(op, metrics.ResultNoop, start)
		return false, nil
	}
	if err != nil {
		e.mu.Unlock()
		e.fail(span, op, start, err)
		return false, err
	}
	doc = e.store.Restore(e.contextID, doc.Tracks, doc.Version)
	e.recordLocked(doc)
	e.mu.Unlock()

	span.SetAttributes(attribute.Int64("twick.version", int64(doc.Version)))
	e.metrics.Observe(op, metrics.ResultOK, start)
	e.logger.Debug("history "+op, "version", doc.Version)
	e.notify(ctx, op, doc, change{topic: tp})
	return true, nil
}

// CanUndo returns true if there are operations to undo.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo returns true if there are operations to redo.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// UndoCount returns the number of undoable entries.
func (e *Editor) UndoCount() int { return e.history.UndoCount() }

// RedoCount returns the number of redoable entries.
func (e *Editor) RedoCount() int { return e.history.RedoCount() }

// UndoHistory describes the undo stack, most recent last.
func (e *Editor) UndoHistory() []history.EntryInfo { return e.history.UndoInfo() }

// RedoHistory describes the redo stack, next redo last.
func (e *Editor) RedoHistory() []history.EntryInfo { return e.history.RedoInfo() }

// ClearHistory drops undo and redo entries, keeping the current document.
func (e *Editor) ClearHistory(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Clear(ctx)
	e.metrics.SetHistory(e.contextID, 0, 0)
}

// SetMaxUndoEntries changes the history depth, dropping the oldest entries
// if needed.
func (e *Editor) SetMaxUndoEntries(max int) {
	e.history.SetMaxEntries(max)
}

// Batch runs fn with history grouping, so every change fn makes is undone by
// a single Undo. If fn fails, the document and both history stacks are put
// back as they were before fn ran. A nested Batch joins the enclosing group.
//
// Inside fn, Undo and Redo fail with history.ErrGroupChanged once fn has
// made a change.
func (e *Editor) Batch(ctx context.Context, name string, fn func() error) error {
	if e.history.IsGrouping() {
		return fn()
	}
	e.history.BeginGroup(name)
	err := fn()
	if err == nil {
		e.history.EndGroup(ctx)
		return nil
	}
	e.rollback(ctx, name)
	return err
}

// rollback reinstates the document recorded when the open group began.
func (e *Editor) rollback(ctx context.Context, name string) {
	e.mu.Lock()
	doc, changed := e.history.Rollback(ctx)
	if !changed || e.closed {
		e.mu.Unlock()
		return
	}
	doc = e.store.Restore(e.contextID, doc.Tracks, doc.Version)
	e.recordLocked(doc)
	e.mu.Unlock()

	e.logger.Info("batch rolled back", "batch", name, "version", doc.Version)
	e.notify(ctx, "rollback", doc, change{topic: event.TopicDocumentChanged})
}

// ============================================================================
// Lifecycle
// ============================================================================

// Close releases the context. Later operations return ErrClosed. The
// persisted history, if any, is kept.
func (e *Editor) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	version := e.store.Get(e.contextID).Version
	e.store.Clear(e.contextID)
	e.mu.Unlock()

	e.metrics.Forget(e.contextID)
	return e.publisher.Publish(ctx, event.Event{
		Topic:     event.TopicContextClosed,
		ContextID: e.contextID,
		Version:   version,
		Operation: "close",
		Time:      time.Now(),
	})
}

// ============================================================================
// Internals
// ============================================================================

// change describes a mutation produced under the editor lock. A zero
// version bumps the current version.
type change struct {
	tracks    []*timeline.Track
	version   uint64
	topic     topic.Topic
	trackID   string
	elementID string
}

// apply runs fn against the current document under the write lock and
// commits the change it returns. A nil change is a no-op.
func (e *Editor) apply(ctx context.Context, op string, fn func(Document) (*change, error)) error {
	ctx, span := e.startSpan(ctx, op)
	defer span.End()
	start := time.Now()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	c, err := fn(e.store.Get(e.contextID))
	if err != nil {
		e.mu.Unlock()
		e.fail(span, op, start, err)
		return err
	}
	if c == nil {
		e.mu.Unlock()
		e.metrics.Observe(op, metrics.ResultNoop, start)
		return nil
	}
	var doc Document
	if c.version > 0 {
		doc = e.store.Restore(e.contextID, c.tracks, c.version)
	} else {
		doc = e.store.Set(e.contextID, c.tracks)
	}
	e.history.Commit(ctx, doc, op)
	e.recordLocked(doc)
	e.mu.Unlock()

	span.SetAttributes(attribute.Int64("twick.version", int64(doc.Version)))
	e.metrics.Observe(op, metrics.ResultOK, start)
	e.logger.Debug("committed", "operation", op, "version", doc.Version, "track", c.trackID, "element", c.elementID)
	e.notify(ctx, op, doc, *c)
	return nil
}

func (e *Editor) recordLocked(doc Document) {
	e.metrics.SetVersion(e.contextID, doc.Version)
	e.metrics.SetHistory(e.contextID, e.history.UndoCount(), e.history.RedoCount())
}

func (e *Editor) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "engine.Editor."+op, trace.WithAttributes(
		attribute.String("twick.context", e.contextID),
	))
}

func (e *Editor) fail(span trace.Span, op string, start time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.metrics.Observe(op, metrics.Result(false, err), start)
	if timeline.CodeOf(err) != timeline.CodeUnknown {
		e.metrics.ValidationFailed(err)
		e.logger.Debug("rejected", "operation", op, "error", err)
		return
	}
	e.logger.Warn("operation failed", "operation", op, "error", err)
}

// notify publishes the operation topic and a document change event. It is
// called without the editor lock so handlers may read the editor.
func (e *Editor) notify(ctx context.Context, op string, doc Document, c change) {
	data, err := wire.Marshal(doc)
	if err != nil {
		e.logger.Warn("encode document for event", "error", err)
	}
	now := time.Now()
	base := event.Event{
		ContextID: e.contextID,
		Version:   doc.Version,
		Operation: op,
		TrackID:   c.trackID,
		ElementID: c.elementID,
		Time:      now,
	}
	if c.topic != "" && c.topic != event.TopicDocumentChanged {
		ev := base
		ev.Topic = c.topic
		if err := e.publisher.Publish(ctx, ev); err != nil {
			e.logger.Warn("publish event", "topic", ev.Topic, "error", err)
		}
	}
	ev := base
	ev.Topic = event.TopicDocumentChanged
	ev.Document = data
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.Warn("publish event", "topic", ev.Topic, "error", err)
	}
}

func (e *Editor) logWarnings(el Element) {
	if el == nil {
		return
	}
	if report := timeline.Check(el); len(report.Warnings) > 0 {
		e.logger.Debug("element warnings", "element", el.ID(), "warnings", report.Warnings)
	}
}

// probeMedia asks the prober about a media element that has no end time
// and returns the source duration. Unknown sources fall back to the default
// duration. A probed video with no size of its own takes the source
// dimensions.
func (e *Editor) probeMedia(ctx context.Context, el Element) (float64, error) {
	if e.prober == nil || el.HasEnd() {
		return 0, nil
	}
	src, known := mediaSource(el)
	if src == "" || known > 0 {
		return 0, nil
	}
	md, err := e.prober.Probe(ctx, src)
	switch {
	case err == nil:
		e.metrics.Probe(true)
		seedVideoSize(el, md)
		return md.Duration, nil
	case errors.Is(err, probe.ErrUnknownSource):
		e.metrics.Probe(false)
		e.logger.Debug("no media metadata", "src", src)
		return 0, nil
	default:
		e.metrics.Probe(false)
		return 0, fmt.Errorf("%w: %s: %w", ErrProbe, src, err)
	}
}

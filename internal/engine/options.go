package engine

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/history"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/probe"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
	"github.com/ncounterspecialist/twick-sub001/internal/event"
	"github.com/ncounterspecialist/twick-sub001/internal/metrics"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries  = history.DefaultMaxEntries
	DefaultElementDuration = timeline.DefaultDuration
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithDocumentStore shares a document store between editors. Each editor
// only touches its own context.
func WithDocumentStore(store *document.Store) Option {
	return func(e *Editor) {
		if store != nil {
			e.store = store
		}
	}
}

// WithInitialDocument sets the document the editor starts from when no
// persisted history is resumed. Without it the editor starts from the
// store's current document for the context.
func WithInitialDocument(doc document.Document) Option {
	return func(e *Editor) {
		e.initial = &doc
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Editor) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithSnapshots persists history under key after every transition.
func WithSnapshots(store snapshot.Store, key string) Option {
	return func(e *Editor) {
		e.snapshots = store
		e.snapshotKey = key
	}
}

// WithResume controls whether a persisted history snapshot replaces the
// initial document. The default is true.
func WithResume(resume bool) Option {
	return func(e *Editor) {
		e.resume = resume
	}
}

// WithProber sets the media prober used to size new video and audio.
func WithProber(p probe.Prober) Option {
	return func(e *Editor) {
		e.prober = p
	}
}

// WithPublisher sets the change event publisher.
func WithPublisher(p event.Publisher) Option {
	return func(e *Editor) {
		if p != nil {
			e.publisher = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Editor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Editor) {
		e.metrics = r
	}
}

// WithDefaultDuration sets the length of elements added without an end
// time and without a probed media duration.
func WithDefaultDuration(seconds float64) Option {
	return func(e *Editor) {
		if seconds > 0 {
			e.defaultDuration = seconds
		}
	}
}

// WithStrictSchema makes LoadDocumentJSON check input against the wire
// schema before decoding.
func WithStrictSchema() Option {
	return func(e *Editor) {
		e.strictSchema = true
	}
}

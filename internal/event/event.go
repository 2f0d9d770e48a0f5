package event

import (
	"context"
	"time"

	"github.com/ncounterspecialist/twick-sub001/internal/event/topic"
)

// Timeline topics published by the editor.
const (
	TopicDocumentChanged topic.Topic = "timeline.document.changed"
	TopicDocumentLoaded  topic.Topic = "timeline.document.loaded"
	TopicTrackAdded      topic.Topic = "timeline.track.added"
	TopicTrackRemoved    topic.Topic = "timeline.track.removed"
	TopicTrackRenamed    topic.Topic = "timeline.track.renamed"
	TopicElementAdded    topic.Topic = "timeline.element.added"
	TopicElementRemoved  topic.Topic = "timeline.element.removed"
	TopicElementUpdated  topic.Topic = "timeline.element.updated"
	TopicElementSplit    topic.Topic = "timeline.element.split"
	TopicHistoryUndo     topic.Topic = "timeline.history.undo"
	TopicHistoryRedo     topic.Topic = "timeline.history.redo"
	TopicContextClosed   topic.Topic = "timeline.context.closed"
)

// Event is a change notification. Document carries the serialized wire
// document after the change for TopicDocumentChanged; receivers treat it as
// read-only.
type Event struct {
	Topic     topic.Topic
	ContextID string
	Version   uint64
	Operation string
	TrackID   string
	ElementID string
	Document  []byte
	Time      time.Time
}

// Handler processes events.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Publisher is the narrow interface the editor depends on.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, Event) error { return nil }

// DeliveryMode specifies how events are delivered to a handler.
type DeliveryMode int

const (
	// DeliverySync runs the handler in the publisher's goroutine.
	DeliverySync DeliveryMode = iota

	// DeliveryAsync queues the event for a bus worker.
	DeliveryAsync
)

// String returns a human-readable delivery mode name.
func (m DeliveryMode) String() string {
	switch m {
	case DeliverySync:
		return "sync"
	case DeliveryAsync:
		return "async"
	default:
		return "unknown"
	}
}

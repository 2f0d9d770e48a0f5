// Package event provides the publish/subscribe bus that carries timeline
// change notifications out of the editor.
//
// The editor publishes an Event after every committed change. Renderers and
// other observers subscribe with a topic pattern (see package topic) and
// receive the serialized document read-only; they never call back into
// mutation.
//
//	bus := event.NewBus()
//	_ = bus.Start()
//	defer bus.Stop(ctx)
//
//	bus.SubscribeFunc(event.TopicDocumentChanged, func(ctx context.Context, ev event.Event) error {
//		return render(ev.Document)
//	}, event.Async())
//
// Sync subscriptions run inside Publish in registration order. Async
// subscriptions are queued to worker goroutines; a full queue drops the
// event for that subscription and Publish reports ErrQueueFull. Handler
// errors and panics are logged and counted but never reach the publisher.
package event

package event

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ncounterspecialist/twick-sub001/internal/event/topic"
)

// Subscription is a registered handler.
type Subscription struct {
	id      string
	pattern topic.Topic
	handler Handler
	mode    DeliveryMode
	once    bool
	filter  func(Event) bool
	active  atomic.Bool
}

// ID returns the subscription id.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed pattern.
func (s *Subscription) Topic() topic.Topic { return s.pattern }

// Mode returns the delivery mode.
func (s *Subscription) Mode() DeliveryMode { return s.mode }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return s.active.Load() }

// Cancel stops delivery to this subscription.
func (s *Subscription) Cancel() { s.active.Store(false) }

func (s *Subscription) wants(ev Event) bool {
	if !s.active.Load() || !ev.Topic.Matches(s.pattern) {
		return false
	}
	return s.filter == nil || s.filter(ev)
}

// Stats is a snapshot of bus counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	Dropped       uint64
	HandlerErrors uint64
	HandlerPanics uint64
	Subscriptions int
}

type queued struct {
	ctx context.Context
	ev  Event
	sub *Subscription
}

// Bus delivers events to subscriptions whose pattern matches the event
// topic. Sync subscriptions run in Publish; async ones run on workers
// between Start and Stop.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	nextID atomic.Uint64

	config  busConfig
	queue   chan queued
	wg      sync.WaitGroup
	running atomic.Bool

	published     atomic.Uint64
	delivered     atomic.Uint64
	dropped       atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// NewBus creates a bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Bus{config: config}
}

// Start launches the async workers.
func (b *Bus) Start() error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrBusAlreadyRunning
	}
	b.queue = make(chan queued, b.config.asyncQueueSize)
	for i := 0; i < b.config.asyncWorkerCount; i++ {
		b.wg.Add(1)
		go b.worker(b.queue)
	}
	return nil
}

// Stop closes the queue and waits for queued events to drain or ctx to end.
func (b *Bus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return ErrBusNotRunning
	}
	b.mu.Lock()
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns true between Start and Stop.
func (b *Bus) IsRunning() bool { return b.running.Load() }

// Subscribe registers handler for topics matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	sub := &Subscription{
		id:      "sub-" + strconv.FormatUint(b.nextID.Add(1), 10),
		pattern: pattern,
		handler: handler,
	}
	for _, opt := range opts {
		opt(sub)
	}
	sub.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

// SubscribeFunc registers a function handler.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe cancels and removes sub.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			s.Cancel()
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers ev. Sync handlers run before Publish returns; their
// errors are logged, not returned. Async deliveries are dropped with
// ErrQueueFull when the queue is full and skipped when the bus is stopped.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if !ev.Topic.IsValid() || ev.Topic.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, ev.Topic)
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	b.published.Add(1)

	b.mu.RLock()
	matched := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.wants(ev) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	var queueErr error
	for _, s := range matched {
		if s.mode == DeliveryAsync {
			if err := b.enqueue(ctx, ev, s); err != nil {
				queueErr = err
			}
			continue
		}
		b.deliver(ctx, ev, s)
	}
	return queueErr
}

func (b *Bus) enqueue(ctx context.Context, ev Event, s *Subscription) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.running.Load() {
		b.dropped.Add(1)
		return nil
	}
	select {
	case b.queue <- queued{ctx: context.WithoutCancel(ctx), ev: ev, sub: s}:
		return nil
	default:
		b.dropped.Add(1)
		return ErrQueueFull
	}
}

func (b *Bus) worker(queue <-chan queued) {
	defer b.wg.Done()
	for q := range queue {
		if q.sub.IsActive() {
			b.deliver(q.ctx, q.ev, q.sub)
		}
	}
}

func (b *Bus) deliver(ctx context.Context, ev Event, s *Subscription) {
	err := b.call(ctx, ev, s)
	switch {
	case err == nil:
		b.delivered.Add(1)
		if s.once {
			_ = b.Unsubscribe(s)
		}
	case isPanic(err):
		b.handlerPanics.Add(1)
		b.config.logger.Error("event handler panicked", "subscription", s.id, "topic", ev.Topic, "error", err)
	default:
		b.handlerErrors.Add(1)
		b.config.logger.Warn("event handler failed", "subscription", s.id, "topic", ev.Topic, "error", err)
	}
}

func (b *Bus) call(ctx context.Context, ev Event, s *Subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{SubscriptionID: s.id, Topic: string(ev.Topic), Value: r}
		}
	}()
	return s.handler.Handle(ctx, ev)
}

func isPanic(err error) bool {
	_, ok := err.(*PanicError)
	return ok
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		Dropped:       b.dropped.Load(),
		HandlerErrors: b.handlerErrors.Load(),
		HandlerPanics: b.handlerPanics.Load(),
		Subscriptions: n,
	}
}

package event

import "log/slog"

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	// asyncQueueSize is the size of the async event queue.
	asyncQueueSize int

	// asyncWorkerCount is the number of async worker goroutines.
	asyncWorkerCount int

	logger *slog.Logger
}

func defaultBusConfig() busConfig {
	return busConfig{
		asyncQueueSize:   1024,
		asyncWorkerCount: 2,
		logger:           slog.Default(),
	}
}

// WithAsyncQueueSize sets the async event queue size.
func WithAsyncQueueSize(size int) BusOption {
	return func(c *busConfig) {
		if size > 0 {
			c.asyncQueueSize = size
		}
	}
}

// WithAsyncWorkerCount sets the number of async worker goroutines.
func WithAsyncWorkerCount(count int) BusOption {
	return func(c *busConfig) {
		if count > 0 {
			c.asyncWorkerCount = count
		}
	}
}

// WithLogger sets the logger used for handler failures.
func WithLogger(logger *slog.Logger) BusOption {
	return func(c *busConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*Subscription)

// Async delivers events to the handler from a bus worker.
func Async() SubscriptionOption {
	return func(s *Subscription) { s.mode = DeliveryAsync }
}

// Once cancels the subscription after its first successful delivery.
func Once() SubscriptionOption {
	return func(s *Subscription) { s.once = true }
}

// WithFilter delivers only events for which fn returns true.
func WithFilter(fn func(Event) bool) SubscriptionOption {
	return func(s *Subscription) { s.filter = fn }
}

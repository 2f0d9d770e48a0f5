package app

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ncounterspecialist/twick-sub001/internal/engine"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/probe"
	"github.com/ncounterspecialist/twick-sub001/internal/event"
	"github.com/ncounterspecialist/twick-sub001/internal/metrics"
)

// timelineTopics matches every topic the editor publishes.
const timelineTopics = "timeline.**"

// bootstrapper initializes components in dependency order and unwinds the
// ones already started when a later step fails.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app, initOrder: make([]string, 0, 6)}
}

func (b *bootstrapper) bootstrap(ctx context.Context) error {
	steps := []func(context.Context) error{
		b.initLogger,
		b.initMetrics,
		b.initEventBus,
		b.initSnapshots,
		b.initProber,
		b.initEditors,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) initLogger(context.Context) error {
	if b.app.opts.Logger != nil {
		b.app.logger = b.app.opts.Logger
	} else {
		logger, err := NewLogger(b.app.cfg.Logging, b.app.opts.LogOutput)
		if err != nil {
			return &InitError{Component: "logger", Err: err}
		}
		b.app.logger = logger
	}
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

func (b *bootstrapper) initMetrics(context.Context) error {
	reg := b.app.opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	b.app.registry = reg
	b.app.metrics = metrics.New(reg)
	b.initOrder = append(b.initOrder, "metrics")
	return nil
}

func (b *bootstrapper) initEventBus(context.Context) error {
	bus := event.NewBus(event.WithLogger(b.app.logger))
	if err := bus.Start(); err != nil {
		return &InitError{Component: "event bus", Err: err}
	}
	b.app.bus = bus
	b.initOrder = append(b.initOrder, "eventBus")

	logger := b.app.logger
	sub, err := bus.SubscribeFunc(timelineTopics, func(ctx context.Context, ev event.Event) error {
		logger.DebugContext(ctx, "timeline event",
			"topic", ev.Topic,
			"context", ev.ContextID,
			"version", ev.Version,
			"op", ev.Operation,
		)
		return nil
	})
	if err != nil {
		return &InitError{Component: "event bus", Err: err}
	}
	b.app.eventSub = sub
	return nil
}

func (b *bootstrapper) initSnapshots(ctx context.Context) error {
	if b.app.opts.Snapshots != nil {
		b.app.snapshots = b.app.opts.Snapshots
		b.initOrder = append(b.initOrder, "snapshots")
		return nil
	}
	store, err := OpenSnapshots(ctx, b.app.cfg.Persistence)
	if err != nil {
		return &InitError{Component: "snapshots", Err: err}
	}
	b.app.snapshots = store
	b.app.ownsStore = store != nil
	b.initOrder = append(b.initOrder, "snapshots")
	if store != nil {
		b.app.logger.Info("snapshot store opened", "driver", b.app.cfg.Driver())
	}
	return nil
}

func (b *bootstrapper) initProber(context.Context) error {
	next := b.app.opts.Prober
	if next == nil && b.app.cfg.Probe.Manifest != "" {
		m, err := probe.LoadManifest(b.app.cfg.Probe.Manifest)
		if err != nil {
			return &InitError{Component: "prober", Err: err}
		}
		next = m
	}
	if next == nil {
		b.initOrder = append(b.initOrder, "prober")
		return nil
	}
	cache, err := probe.NewCache(next, b.app.cfg.Probe.CacheSize)
	if err != nil {
		return &InitError{Component: "prober", Err: err}
	}
	b.app.prober = cache
	b.initOrder = append(b.initOrder, "prober")
	return nil
}

func (b *bootstrapper) initEditors(context.Context) error {
	cfg := b.app.cfg
	opts := []engine.Option{
		engine.WithMaxUndoEntries(cfg.History.Depth),
		engine.WithPublisher(b.app.bus),
		engine.WithLogger(b.app.logger),
		engine.WithMetrics(b.app.metrics),
		engine.WithDefaultDuration(cfg.Editor.DefaultDuration.Seconds()),
	}
	if b.app.prober != nil {
		opts = append(opts, engine.WithProber(b.app.prober))
	}
	if cfg.Editor.StrictSchema {
		opts = append(opts, engine.WithStrictSchema())
	}
	b.app.editors = engine.NewRegistry(document.NewStore(), opts...)
	b.initOrder = append(b.initOrder, "editors")
	return nil
}

// cleanup releases components in reverse initialization order.
func (b *bootstrapper) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(ctx, b.initOrder[i])
	}
}

func (b *bootstrapper) cleanupComponent(ctx context.Context, component string) {
	switch component {
	case "eventBus":
		if b.app.bus != nil {
			_ = b.app.bus.Stop(ctx)
			b.app.bus = nil
		}
	case "snapshots":
		if b.app.ownsStore && b.app.snapshots != nil {
			_ = b.app.snapshots.Close()
		}
		b.app.snapshots = nil
	case "editors":
		if b.app.editors != nil {
			_ = b.app.editors.CloseAll(ctx)
			b.app.editors = nil
		}
	}
}

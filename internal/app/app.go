// Package app wires configuration to the timeline editor: logging,
// metrics, the event bus, snapshot persistence, media probing and the
// registry of open editing contexts.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ncounterspecialist/twick-sub001/internal/config"
	"github.com/ncounterspecialist/twick-sub001/internal/engine"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/probe"
	"github.com/ncounterspecialist/twick-sub001/internal/event"
	"github.com/ncounterspecialist/twick-sub001/internal/metrics"
	"github.com/ncounterspecialist/twick-sub001/internal/script"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

// Options overrides components that would otherwise be built from the
// configuration.
type Options struct {
	// LogOutput receives log records. Defaults to stderr.
	LogOutput io.Writer
	// Logger replaces the logger built from the logging section.
	Logger *slog.Logger
	// Registry receives the metric collectors. A fresh registry is
	// created when nil.
	Registry *prometheus.Registry
	// Snapshots replaces the configured persistence backend.
	Snapshots snapshot.Store
	// Prober replaces the configured probe manifest.
	Prober probe.Prober
}

// Application owns the long-lived components of a process.
type Application struct {
	cfg  *config.Config
	opts Options

	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Recorder
	bus       *event.Bus
	eventSub  *event.Subscription
	snapshots snapshot.Store
	ownsStore bool
	prober    probe.Prober
	editors   *engine.Registry

	mu     sync.Mutex
	closed bool
}

// New builds an application from cfg. cfg must already be validated.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &Application{cfg: cfg, opts: opts}
	if err := newBootstrapper(a).bootstrap(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Config returns the configuration the application was built from.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// Bus returns the event bus editors publish to.
func (a *Application) Bus() *event.Bus { return a.bus }

// Gatherer exposes the metric registry for scraping.
func (a *Application) Gatherer() prometheus.Gatherer { return a.registry }

// Metrics returns the metric recorder.
func (a *Application) Metrics() *metrics.Recorder { return a.metrics }

// Snapshots returns the persistence backend, or nil when disabled.
func (a *Application) Snapshots() snapshot.Store { return a.snapshots }

// Editors returns the registry of open contexts.
func (a *Application) Editors() *engine.Registry { return a.editors }

// Open creates the editor for contextID with the configured history
// persistence.
func (a *Application) Open(ctx context.Context, contextID string, opts ...engine.Option) (*engine.Editor, error) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	var perContext []engine.Option
	if a.snapshots != nil {
		perContext = append(perContext,
			engine.WithSnapshots(a.snapshots, SnapshotKey(a.cfg.Persistence, contextID)),
			engine.WithResume(a.cfg.History.Resume),
		)
	}
	ed, err := a.editors.Open(ctx, contextID, append(perContext, opts...)...)
	if err != nil {
		return nil, err
	}
	a.logger.Info("context opened",
		"context", contextID,
		"version", ed.Version(),
		"resumed", ed.Resumed(),
	)
	return ed, nil
}

// Runner returns a script runner for ed using the script section.
func (a *Application) Runner(ed *engine.Editor) *script.Runner {
	return script.NewRunner(ed,
		script.WithLogger(a.logger.With("context", ed.ContextID())),
		script.WithTimeout(a.cfg.Script.Timeout),
	)
}

// Close closes every open context and releases the components created by
// New. It is safe to call more than once.
func (a *Application) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	var errs []error
	if err := a.editors.CloseAll(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.eventSub != nil {
		a.eventSub.Cancel()
	}
	if err := a.bus.Stop(ctx); err != nil && !errors.Is(err, event.ErrBusNotRunning) {
		errs = append(errs, err)
	}
	if a.ownsStore && a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

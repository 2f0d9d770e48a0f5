package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ncounterspecialist/twick-sub001/internal/app"
	"github.com/ncounterspecialist/twick-sub001/internal/config"
	"github.com/ncounterspecialist/twick-sub001/internal/engine"
	"github.com/ncounterspecialist/twick-sub001/internal/watch"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type options struct {
	configs     stringList
	contextID   string
	in          string
	out         string
	logLevel    string
	strict      bool
	probe       string
	metricsAddr string
	watch       bool
	version     bool
	scripts     []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("twick", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Var(&opts.configs, "config", "Configuration file, TOML or YAML (repeatable)")
	fs.Var(&opts.configs, "c", "Configuration file (shorthand)")
	fs.StringVar(&opts.contextID, "context", "default", "Editing context id")
	fs.StringVar(&opts.in, "in", "", "Load the document from this JSON file")
	fs.StringVar(&opts.out, "out", "-", "Write the document JSON here (- for stdout, empty to skip)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	fs.BoolVar(&opts.strict, "strict", false, "Validate loaded documents against the JSON schema")
	fs.StringVar(&opts.probe, "probe", "", "Media manifest JSON used to size video and audio")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run scripts when they change")
	fs.BoolVar(&opts.version, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "twick - timeline document editor\n\n")
		fmt.Fprintf(stderr, "Usage: twick [options] [script.lua...]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  twick -in doc.json -out doc.json trim.lua\n")
		fmt.Fprintf(stderr, "  twick -c twick.toml -context promo -watch edit.lua\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.scripts = fs.Args()
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "twick %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	application, err := app.New(ctx, cfg, app.Options{LogOutput: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Close(closeCtx)
	}()
	logger := application.Logger()

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(application, cfg.Metrics.Addr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ed, err := application.Open(ctx, opts.contextID)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.in != "" {
		data, err := os.ReadFile(opts.in)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if err := ed.LoadDocumentJSON(ctx, data); err != nil {
			fmt.Fprintf(stderr, "Error: load %s: %v\n", opts.in, err)
			return 1
		}
	}

	runner := application.Runner(ed)
	for _, path := range opts.scripts {
		if err := runner.RunFile(ctx, path); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if err := writeDocument(ed, opts.out, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.watch && len(opts.scripts) > 0 {
		if err := watchScripts(ctx, application, ed, opts, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

// loadConfig layers flag overrides on top of files and environment.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configs...)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.strict {
		cfg.Editor.StrictSchema = true
	}
	if opts.probe != "" {
		cfg.Probe.Manifest = opts.probe
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDocument(ed *engine.Editor, out string, stdout io.Writer) error {
	if out == "" {
		return nil
	}
	data, err := ed.MarshalDocument()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	if out == "-" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(out, buf.Bytes(), 0o644)
}

func serveMetrics(a *app.Application, addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.Gatherer(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}

// watchScripts re-runs a script each time it changes until ctx ends.
func watchScripts(ctx context.Context, a *app.Application, ed *engine.Editor, opts options, stdout io.Writer) error {
	w, err := watch.New(watch.DefaultDelay)
	if err != nil {
		return err
	}
	defer w.Close()
	for _, path := range opts.scripts {
		if err := w.Add(path); err != nil {
			return err
		}
	}

	logger := a.Logger()
	runner := a.Runner(ed)
	logger.Info("watching scripts", "count", len(opts.scripts))
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Removed {
				logger.Warn("script removed", "path", ev.Path)
				continue
			}
			if err := runner.RunFile(ctx, ev.Path); err != nil {
				logger.Error("script failed", "path", ev.Path, "error", err)
				continue
			}
			logger.Info("script applied", "path", ev.Path, "version", ed.Version())
			if err := writeDocument(ed, opts.out, stdout); err != nil {
				logger.Error("write document", "error", err)
			}
		}
	}
}

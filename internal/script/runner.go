package script

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ncounterspecialist/twick-sub001/internal/engine"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// Error reports a failed script. Cause is the editor error the script
// raised last, if any.
type Error struct {
	Script string
	Err    error
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

// Unwrap exposes both the Lua failure and the editor error behind it.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Runner executes scripts against one editor.
type Runner struct {
	editor  *engine.Editor
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger that receives tl.log output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTimeout bounds each run. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a runner for editor.
func NewRunner(editor *engine.Editor, opts ...Option) *Runner {
	r := &Runner{editor: editor, logger: slog.Default(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes code as one undoable batch named after the script. When the
// script fails every change it made is rolled back.
func (r *Runner) Run(ctx context.Context, name, code string) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	state := NewState()
	defer state.Close()

	mod := &module{ctx: ctx, editor: r.editor, logger: r.logger.With("script", name)}
	state.RegisterModule(ModuleName, mod.funcs())

	start := time.Now()
	err := r.editor.Batch(ctx, "script "+name, func() error {
		return state.DoString(ctx, name, code)
	})
	if err != nil {
		r.logger.Warn("script failed", "script", name, "error", err)
		var cause error
		if mod.raised != nil && strings.Contains(err.Error(), mod.raised.Error()) {
			cause = mod.raised
		}
		return &Error{Script: name, Err: err, Cause: cause}
	}
	r.logger.Debug("script finished", "script", name, "elapsed", time.Since(start), "version", r.editor.Version())
	return nil
}

// RunFile reads and runs the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return r.Run(ctx, filepath.Base(path), string(code))
}

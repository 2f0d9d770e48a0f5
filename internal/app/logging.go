package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ncounterspecialist/twick-sub001/internal/config"
)

// NewLogger builds a slog logger from the logging section. A nil w writes
// to stderr.
func NewLogger(cfg config.Logging, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Format)
}

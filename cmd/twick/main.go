// Command twick edits a timeline document from the command line.
//
// A document is optionally loaded from JSON, every Lua script named on the
// command line is run against it in order, and the result is written back
// out as JSON. With -watch the scripts are re-run whenever they change.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

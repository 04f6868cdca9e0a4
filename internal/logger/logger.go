// Package logger holds the structured logger shared by the frame allocator
// packages and the framectl command.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// L is the global logger instance. It discards all output until Init is called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Output  io.Writer  // Destination for log records. Default: os.Stderr
	Level   slog.Level // Minimum log level
	JSON    bool       // Emit JSON records instead of key=value text
}

// Init configures logging. Call from main() before any log calls.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(out, handlerOpts))
		return
	}
	L = slog.New(slog.NewTextHandler(out, handlerOpts))
}

// Package logging sets up the process-wide slog logger shared by the
// console and the telemetry consumer.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// levelRouter sends INFO and WARN to one handler and ERROR and above to
// another.
type levelRouter struct {
	out slog.Handler
	err slog.Handler
	min slog.Level
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.err.Handle(ctx, r)
	}
	return lr.out.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{out: lr.out.WithAttrs(attrs), err: lr.err.WithAttrs(attrs), min: lr.min}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{out: lr.out.WithGroup(name), err: lr.err.WithGroup(name), min: lr.min}
}

// New builds a logger writing text records to out and errOut.  Records at
// or above min are kept.
func New(out, errOut io.Writer, min slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: min}
	return slog.New(&levelRouter{
		out: slog.NewTextHandler(out, opts),
		err: slog.NewTextHandler(errOut, opts),
		min: min,
	})
}

// Setup installs the default logger: INFO/WARN to stdout, ERROR to
// stderr, and every level to path as well when path is set.  The returned
// cleanup closes the file.
func Setup(path string, debug bool) (*slog.Logger, func(), error) {
	min := slog.LevelInfo
	if debug {
		min = slog.LevelDebug
	}
	cleanup := func() {}
	out, errOut := io.Writer(os.Stdout), io.Writer(os.Stderr)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		out = io.MultiWriter(os.Stdout, f)
		errOut = io.MultiWriter(os.Stderr, f)
	}
	log := New(out, errOut, min)
	slog.SetDefault(log)
	return log, cleanup, nil
}

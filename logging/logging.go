// Package logging wraps log/slog with a small formatting handler: one
// handler, one format, verbosity-gated stderr mirroring, rather than reaching
// for a third-party structured logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Handler formats records as "time level message attr attr..." and mirrors
// them to stderr when verbose is enabled; warnings and errors are always
// mirrored.
type Handler struct {
	out     io.Writer
	h       slog.Handler
	mu      *sync.Mutex
	verbose bool
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, h: h.h.WithAttrs(attrs), mu: h.mu, verbose: h.verbose}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, h: h.h.WithGroup(name), mu: h.mu, verbose: h.verbose}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("15:04:05"), strings.ToUpper(r.Level.String()) + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Key+"="+a.Value.String())
		return true
	})
	line := strings.Join(parts, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write([]byte(line))
	}
	if h.verbose || r.Level >= slog.LevelWarn {
		_, _ = os.Stderr.Write([]byte(line))
	}
	return err
}

// New returns a slog.Logger writing to out, gated by the config-supplied
// verbose level (spec.md §6 "verbose (diagnostics level)").
func New(out io.Writer, verboseLevel int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verboseLevel >= 2:
		level = slog.LevelDebug
	case verboseLevel == 1:
		level = slog.LevelInfo
	}
	h := &Handler{
		out:     out,
		h:       slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
		mu:      &sync.Mutex{},
		verbose: verboseLevel > 0,
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything, for tests and library
// callers that don't want compile-time chatter.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

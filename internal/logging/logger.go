// Package logging builds the service's slog logger and ties log entries to
// the HTTP request that produced them through chi's request ID.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// New returns a logger writing to w.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup installs a stdout logger as the slog default and returns it.
func Setup(level, format string) *slog.Logger {
	logger := New(level, format, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns base tagged with the chi request ID found in ctx, if
// any. A nil base uses slog.Default().
//
//	func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
//	    log := logging.FromContext(r.Context(), s.logger)
//	    log.Info("upload received", "file", name)
//	}
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return base.With("request_id", reqID)
	}
	return base
}

// WithFields is FromContext plus extra attributes.
func WithFields(ctx context.Context, base *slog.Logger, args ...any) *slog.Logger {
	return FromContext(ctx, base).With(args...)
}

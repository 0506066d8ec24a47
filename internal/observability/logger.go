// Package observability provides structured logging for showbook.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jmylchreest/showbook/internal/config"
	"github.com/m-mizutani/masq"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	loggerKey contextKey = "logger"
)

// SensitiveFields are always masked in log output, at any nesting depth.
var SensitiveFields = []string{"dsn", "password", "token", "secret", "authorization"}

// NewLogger creates a new slog.Logger based on the provided configuration.
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	return NewLoggerWithWriter(cfg, os.Stdout)
}

// NewLoggerWithWriter creates a new slog.Logger that writes to w.
func NewLoggerWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	redact := newRedactor(cfg.Redact)

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 {
				switch a.Key {
				case slog.TimeKey:
					if t, ok := a.Value.Any().(time.Time); ok && cfg.TimeFormat != "" {
						return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
					}
					return a
				case slog.LevelKey, slog.MessageKey, slog.SourceKey:
					return a
				}
			}
			return redact(groups, a)
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

func newRedactor(extra []string) func([]string, slog.Attr) slog.Attr {
	fields := append(append([]string{}, SensitiveFields...), extra...)
	opts := make([]masq.Option, 0, len(fields))
	for _, f := range fields {
		opts = append(opts, masq.WithFieldName(f))
	}
	return masq.New(opts...)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent adds a component name to the logger for identifying the source.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}

// WithRequestID adds a request ID to the logger.
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(slog.String("request_id", requestID))
}

// LoggerFromContext extracts a logger from the context.
// If no logger is found, returns the default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// ContextWithLogger adds a logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// RequestIDFromContext extracts a request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// TimedOperation logs the completion of an operation with its duration.
// The returned function should be deferred.
func TimedOperation(ctx context.Context, logger *slog.Logger, operation string) func() {
	start := time.Now()
	return func() {
		logger.InfoContext(ctx, "operation completed",
			slog.String("operation", operation),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// Package logging provides slog helpers shared across the application:
// context propagation, structured error/operation logging, and safe closing
// of resources whose Close errors would otherwise be silently dropped.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

// WithLogger returns a context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in the context, or slog.Default()
// when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// LogError logs an error with a consistent attribute shape.
// A nil logger falls back to slog.Default().
func LogError(logger *slog.Logger, msg string, err error, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := append([]any{slog.Any("error", err)}, args...)
	logger.Error(msg, attrs...)
}

// LogOperation logs a notable application operation at info level.
func LogOperation(logger *slog.Logger, operation string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := append([]any{slog.String("operation", operation)}, args...)
	logger.Info("operation", attrs...)
}

// LogHTTPRequest logs a completed HTTP request.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	args := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	}
	for _, attr := range attrs {
		args = append(args, attr)
	}
	logger.Info("http request", args...)
}

// SafeCloseWithLogging closes the given resource and logs any error instead
// of dropping it. Intended for use in defer statements.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, resource string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		LogError(logger, "failed to close resource", err, slog.String("resource", resource))
	}
}

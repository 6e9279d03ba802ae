// Package logger provides structured logging infrastructure for the client.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for the outbound request correlation ID
	RequestIDKey contextKey = "request_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithContext returns a logger with context values extracted.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		return l.WithRequestID(requestID)
	}

	return l
}

// WithRequestID returns a logger with the outbound request ID attached
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// APIRequest logs an outbound API request
func (l *Logger) APIRequest(method, path string, status int, latencyMs float64, requestID string) {
	l.Debug("api_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("request_id", requestID),
	)
}

// APIError logs a failed outbound API request
func (l *Logger) APIError(method, path string, status int, err error, requestID string) {
	l.Error("api_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("request_id", requestID),
	)
}

// AuthEvent logs session lifecycle events
func (l *Logger) AuthEvent(event, email string, success bool, reason string) {
	if success {
		l.Info("auth_event",
			slog.String("event", event),
			slog.String("email", email),
			slog.Bool("success", success),
		)
	} else {
		l.Warn("auth_event",
			slog.String("event", event),
			slog.String("email", email),
			slog.Bool("success", success),
			slog.String("reason", reason),
		)
	}
}

// ShapeAnomaly logs a backend response whose shape did not match any known form.
// The normalizer absorbs these into empty results; this is the operator trail.
func (l *Logger) ShapeAnomaly(resource string, detail string) {
	l.Warn("response_shape_anomaly",
		slog.String("resource", resource),
		slog.String("detail", detail),
	)
}

// ReadSuppressed logs a read-path failure that was swallowed so the
// caller could render an empty result instead of an error.
func (l *Logger) ReadSuppressed(operation string, err error) {
	l.Warn("read_error_suppressed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

package logger

import (
	"context"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

type contextKey struct{}

type requestIDKey struct{}

var loggerKey = contextKey{}

// FromContext retrieves a logger from the context.
func FromContext(ctx context.Context) interfaces.Logger {
	if logger, ok := ctx.Value(loggerKey).(interfaces.Logger); ok {
		return logger
	}
	return New()
}

// WithContext adds a logger to the context.
func WithContext(ctx context.Context, logger interfaces.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithFields adds fields to the logger in the context.
func WithFields(ctx context.Context, fields ...interfaces.Field) context.Context {
	logger := FromContext(ctx)
	return WithContext(ctx, logger.WithFields(fields...))
}

// WithRequestID stores a request id for later log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Package observability carries request-scoped logging state through
// context.Context so that services and adapters log with the request's
// correlation fields.
package observability

import (
	"context"
	"log/slog"
)

type loggerContextKey struct{}

type requestIDContextKey struct{}

// ContextWithLogger attaches a non-nil logger to the context.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if ctx == nil || lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, lg)
}

// LoggerFromContext returns the logger stored in the context or slog.Default.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if lg, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && lg != nil {
		return lg
	}
	return slog.Default()
}

// ContextWithLogAttrs derives a logger carrying attrs from the one in ctx and
// stores it back. Later LoggerFromContext calls include attrs.
func ContextWithLogAttrs(ctx context.Context, attrs ...any) context.Context {
	if ctx == nil || len(attrs) == 0 {
		return ctx
	}
	return ContextWithLogger(ctx, LoggerFromContext(ctx).With(attrs...))
}

// ContextWithRequestID stores a non-empty request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request id, or "" when none is present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	rid, _ := ctx.Value(requestIDContextKey{}).(string)
	return rid
}

package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ContextKey string

const LoggerContextKey ContextKey = "logger"

// Middleware adds logger to the request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext extracts a logger from ctx, falling back to the default logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// RequestIDMiddleware adds the request id of each request to its logger.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context())
			if id := extractRequestID(r); id != "" {
				logger = logger.With(FieldRequestID, id)
			}
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StructuredLogger logs record mutations with a fixed field layout.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger.WithComponent(ComponentDraft)}
}

// from prefers the request scoped logger carried by ctx.
func (sl *StructuredLogger) from(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger.WithComponent(ComponentDraft)
	}
	return sl.logger
}

// LogMutation logs a successful record change.
func (sl *StructuredLogger) LogMutation(ctx context.Context, op, date, itemID string, args ...any) {
	fields := NewFields().
		WithOperation(op).
		WithRecord(date, itemID).
		ToSlice()
	sl.from(ctx).InfoContext(ctx, "Record updated", append(fields, args...)...)
}

// LogError logs a failed operation.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, op string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.from(ctx).ErrorContext(ctx, msg, fields.WithError(err).WithOperation(op).ToSlice()...)
}

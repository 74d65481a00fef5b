package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyRecordID  contextKey = "record_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithRecordID adds a record ID to the context
func WithRecordID(ctx context.Context, recordID string) context.Context {
	return context.WithValue(ctx, ContextKeyRecordID, recordID)
}

// RecordIDFromContext extracts the record ID from context
func RecordIDFromContext(ctx context.Context) string {
	if recordID, ok := ctx.Value(ContextKeyRecordID).(string); ok {
		return recordID
	}
	return ""
}

// LoggerFrom returns logger annotated with the request and record IDs found in ctx.
func LoggerFrom(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logger = logger.With("req_id", id)
	}
	if id := RecordIDFromContext(ctx); id != "" {
		logger = logger.With("record_id", id)
	}
	return logger
}

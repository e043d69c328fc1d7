package logger

import "context"

type contextKey string

const requestIDKey contextKey = "servetls.request_id"

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// L returns l enriched with the request ID carried by ctx, if any.
// A nil l falls back to the default logger.
func L(ctx context.Context, l Logger) Logger {
	if l == nil {
		l = Default()
	}
	if reqID := RequestIDFromContext(ctx); reqID != "" {
		l = l.With("request_id", reqID)
	}
	return l
}

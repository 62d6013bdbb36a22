package core

import "context"

type contextKey string

const requestIDKey contextKey = "carwise-request-id"

// WithRequestID attaches the inbound request ID so adapters can forward it upstream.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID carried by ctx, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

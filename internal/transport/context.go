// Package transport carries JSON-RPC requests between the agent host
// and the MCP handler: line-delimited stdio (the default) and HTTP with
// SSE sessions or inline POST.
package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"ghbridge/server/internal/jsonrpc"
)

// RequestProcessor processes JSON-RPC requests.
// Implemented by the MCP handler.
type RequestProcessor interface {
	ProcessRequest(ctx context.Context, req *jsonrpc.Request) (interface{}, *jsonrpc.Error)
}

// ContextKey is the type for context keys
type ContextKey string

// RequestIDKey is the context key for the request tracing ID
const RequestIDKey ContextKey = "requestID"

// WithRequestID returns ctx carrying a fresh request ID.
func WithRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, RequestIDKey, generateRequestID())
}

// GetRequestID retrieves the request tracing ID from context, or ""
// when none was set.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

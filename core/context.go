package core

import "context"

// Context keys for report options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	runIDKey          contextKey = "runID"
)

// WithSuppressHeader marks the context so reports skip their stderr header.
// The MCP server uses it because stdio is its transport.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withRunID stores the tracked run ID in the context.
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the tracked run ID from context, or 0 when untracked.
func getRunID(ctx context.Context) int64 {
	val := ctx.Value(runIDKey)
	if val == nil {
		return 0
	}
	runID, ok := val.(int64)
	if !ok {
		return 0
	}
	return runID
}

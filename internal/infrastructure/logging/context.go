package logging

import (
	"context"

	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

// WithCorrelationID stores the provided correlation identifier inside the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return ports.WithCorrelationID(ctx, id)
}

// GetCorrelationID retrieves the correlation identifier from the context, returning
// an empty string when none is present.
func GetCorrelationID(ctx context.Context) string {
	return ports.GetCorrelationID(ctx)
}

// EnsureCorrelationID returns ctx unchanged when it already carries a
// correlation id, or a derived context with a fresh one. The id in effect is
// returned alongside.
func EnsureCorrelationID(ctx context.Context, candidate string) (context.Context, string) {
	if id := ports.GetCorrelationID(ctx); id != "" {
		return ctx, id
	}
	if candidate == "" {
		candidate = ports.GenerateCorrelationID()
	}
	return ports.WithCorrelationID(ctx, candidate), candidate
}

package runner

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type runIDKey struct{}

func newRunID() string {
	return ulid.Make().String()
}

// WithRunID returns a context carrying the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run identifier stored in ctx, if any.
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

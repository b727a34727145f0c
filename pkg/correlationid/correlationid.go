// Package correlationid propagates a per-request correlation id through
// context so log lines from one request can be grouped.
package correlationid

import "context"

// Header is the HTTP header carrying the correlation id.
const Header = "X-Correlation-ID"

type ctxKey struct{}

// WithContext returns a copy of ctx carrying the correlation id.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the correlation id from ctx, if present.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

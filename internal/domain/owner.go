package domain

import "context"

type ownerContextKey struct{}

// WithOwner returns a context carrying the acting owner identifier.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerContextKey{}, ownerID)
}

// OwnerFromContext returns the acting owner identifier, if any.
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerContextKey{}).(string)
	return ownerID, ok && ownerID != ""
}

// internal/identity/identity.go
// Identity is the resolved caller of a request: an authenticated user id or
// anonymous. It is the only thing this service knows about users; token
// issuance and account management live elsewhere.

package identity

import "context"

// Identity represents the acting user for a request
type Identity struct {
	ID            int64
	Authenticated bool
}

// Anonymous returns the identity of an unauthenticated caller
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns the identity of a known user
func Authenticated(id int64) Identity {
	return Identity{ID: id, Authenticated: true}
}

type contextKey struct{}

// WithIdentity stores an identity in the request context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the identity from a request context.
// Requests that never passed through the middleware are anonymous.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(contextKey{}).(Identity); ok {
		return id
	}
	return Anonymous()
}

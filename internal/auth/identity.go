package auth

import "context"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   string
	Username string
	Email    string
	FullName string
}

type identityKey struct{}

// WithIdentity stores the identity on the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity attached by the session middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || identity.UserID == "" {
		return Identity{}, false
	}
	return identity, true
}

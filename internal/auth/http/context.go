// Package http provides the gin middleware and handlers of the authorization core:
// correlation ids, authentication, capability and ownership checks, sessions and audit logs.
package http

import (
	"context"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

type identityKey struct{}

type resourceKey struct{}

// WithIdentity stores the authenticated caller in the context.
func WithIdentity(ctx context.Context, identity *authDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity returns the authenticated caller, or (nil, false) for anonymous requests.
func GetIdentity(ctx context.Context) (*authDomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*authDomain.Identity)
	return identity, ok && identity != nil
}

// WithResource stores the resource loaded by RequireOwnership.
func WithResource(ctx context.Context, resource authDomain.Owned) context.Context {
	return context.WithValue(ctx, resourceKey{}, resource)
}

// GetResource returns the resource loaded by RequireOwnership.
func GetResource(ctx context.Context) (authDomain.Owned, bool) {
	resource, ok := ctx.Value(resourceKey{}).(authDomain.Owned)
	return resource, ok && resource != nil
}

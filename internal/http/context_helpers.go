package httpx

import (
	"context"

	domainauth "github.com/target/coursedesk/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type identityKey struct{}

// SetIdentityInContext returns a child context that carries the resolved identity.
// If id is nil, the original ctx is returned unchanged.
func SetIdentityInContext(ctx context.Context, id *domainauth.Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity resolved for the request and whether one is present.
func IdentityFromContext(ctx context.Context) (*domainauth.Identity, bool) {
	if id, ok := ctx.Value(identityKey{}).(*domainauth.Identity); ok && id != nil {
		return id, true
	}
	return nil, false
}

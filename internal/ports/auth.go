package ports

// Package ports defines interfaces (hexagonal ports) for the identity provider,
// the AuthSession store and the row-level secured resource store.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/target/coursedesk/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore.Load when no AuthSession is stored for a key.
var ErrSessionNotFound = errors.New("auth session not found")

// AuthCodeURLInput groups the parameters for building an authorization URL.
type AuthCodeURLInput struct {
	State       string
	Verifier    string // PKCE verifier; the adapter sends its S256 challenge
	RedirectURL string // optional override of the configured redirect URL
	Provider    string // optional upstream social provider hint (e.g. "github")
}

// ExchangeInput groups parameters for the authorization code exchange.
type ExchangeInput struct {
	Code        string
	Verifier    string
	RedirectURL string
}

// IdentityProvider is the consumer contract of the external identity provider.
//
// Adapters classify failures as apperrors codes: invalid_credentials,
// oauth_exchange_failed, authentication_required or provider_unavailable.
type IdentityProvider interface {
	// PasswordSignIn performs the resource-owner password grant.
	PasswordSignIn(ctx context.Context, email, password string) (domainauth.AuthSession, error)

	// AuthCodeURL returns the provider authorization URL for a PKCE flow.
	AuthCodeURL(ctx context.Context, in AuthCodeURLInput) (string, error)

	// Exchange trades an authorization code and its PKCE verifier for a token pair.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.AuthSession, error)

	// Refresh trades a refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (domainauth.AuthSession, error)

	// UserInfo returns the identity bound to an access token.
	UserInfo(ctx context.Context, accessToken string) (domainauth.Identity, error)

	// Revoke invalidates a token with the provider.
	Revoke(ctx context.Context, token string) error
}

// SessionStore persists the AuthSession for each server session key.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	// Load returns ErrSessionNotFound when key has no session.
	Load(ctx context.Context, key string) (domainauth.AuthSession, error)
	Save(ctx context.Context, key string, sess domainauth.AuthSession) error
	Delete(ctx context.Context, key string) error
	// CompareAndSwap replaces the stored session with next only if the stored
	// refresh token still equals old.RefreshToken. It reports whether the swap happened.
	CompareAndSwap(ctx context.Context, key string, old, next domainauth.AuthSession) (bool, error)
	Ping(ctx context.Context) error
}

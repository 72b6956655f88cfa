package auth

// Package auth contains domain-level types for identities and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// ExpiryLeeway is subtracted from an access token's expiry before it is considered valid.
const ExpiryLeeway = 30 * time.Second

// Identity represents the authenticated principal returned by the IdP.
// Adapters map provider-specific claims into this shape. It is immutable
// for the lifetime of the session it was resolved from.
type Identity struct {
	ID          string         `json:"id"` // provider subject; keys row-level policies
	Email       string         `json:"email"`
	DisplayName string         `json:"username"`
	Metadata    map[string]any `json:"-"`
}

// Username returns the display name, falling back to metadata and the email local part.
func (i Identity) Username() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	if v, ok := i.Metadata["username"].(string); ok && v != "" {
		return v
	}
	if at := strings.IndexByte(i.Email, '@'); at > 0 {
		return i.Email[:at]
	}
	return i.Email
}

// AuthSession is the IdP token pair held server-side for one server session.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is expired at now, including ExpiryLeeway.
func (s AuthSession) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(ExpiryLeeway).Before(s.ExpiresAt)
}

// Valid reports whether the session carries an access token.
func (s AuthSession) Valid() bool { return s.AccessToken != "" }

// ServerSession is the per-browser record carried in the signed session cookie.
// ID keys the AuthSession in the session store. Authenticated alone grants nothing;
// every request re-resolves the identity.
type ServerSession struct {
	ID            string
	PrincipalID   string
	Email         string
	Authenticated bool
}

// IsZero reports whether no server session is present.
func (s ServerSession) IsZero() bool { return s.ID == "" }

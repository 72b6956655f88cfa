package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses the OpenID Connect identity provider for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses the in-process dev identity provider (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

const (
	defaultAuthCallTimeout   = 10 * time.Second
	defaultAuthSessionMaxAge = 30 * 24 * time.Hour
)

// IdentityProviderConfig contains the OpenID Connect identity provider settings.
type IdentityProviderConfig struct {
	// URL is the issuer URL used for OIDC discovery.
	URL string `env:"URL"`
	// APIKey is the confidential client secret. It is also sent as the apikey header.
	APIKey      string `env:"API_KEY"`
	ClientID    string `env:"CLIENT_ID"    envDefault:"coursedesk"`
	RedirectURL string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/callback"`
	Scope       string `env:"SCOPE"        envDefault:"openid email profile offline_access"`
}

// Scopes splits Scope on whitespace.
func (c IdentityProviderConfig) Scopes() []string {
	return strings.Fields(c.Scope)
}

// DevAuthConfig controls the dev identity provider accounts.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	// Accounts is a list of email:password pairs.
	Accounts []string `env:"ACCOUNTS" envDefault:"dev@example.com:devpassword" envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider adapter to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// IdP configuration (used when Mode=oauth).
	IdP IdentityProviderConfig `envPrefix:"IDP_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// CallTimeout bounds every identity provider and session store call.
	CallTimeout time.Duration `env:"AUTH_CALL_TIMEOUT" envDefault:"10s"`

	// SessionMaxAge bounds the lifetime of a stored AuthSession and the server session cookie.
	SessionMaxAge time.Duration `env:"AUTH_SESSION_MAX_AGE" envDefault:"720h"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModeOAuth
	}
	if a.CallTimeout <= 0 {
		a.CallTimeout = defaultAuthCallTimeout
	}
	if a.SessionMaxAge <= 0 {
		a.SessionMaxAge = defaultAuthSessionMaxAge
	}
	a.IdP.URL = strings.TrimRight(strings.TrimSpace(a.IdP.URL), "/")
}

// Validate checks the auth configuration for the selected mode.
// IDP_URL and IDP_API_KEY are required only in oauth mode (the default); mock mode
// runs against the dev provider and needs neither.
func (a *AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModeOAuth:
		if a.IdP.URL == "" {
			return errors.New("IDP_URL is required")
		}
		if a.IdP.APIKey == "" {
			return errors.New("IDP_API_KEY is required")
		}
	case AuthModeMock:
		if len(a.DevAuth.Accounts) == 0 {
			return errors.New("DEV_AUTH_ACCOUNTS must list at least one account in mock mode")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", a.Mode)
	}
	return nil
}

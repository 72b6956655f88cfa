package config

import (
	"fmt"
	"strings"
)

// SessionStoreKind selects the AuthSession store backend.
type SessionStoreKind string

const (
	// SessionStoreRedis keeps AuthSessions in Redis (shared across workers).
	SessionStoreRedis SessionStoreKind = "redis"
	// SessionStoreMemory keeps AuthSessions in process memory (single worker only).
	SessionStoreMemory SessionStoreKind = "memory"
)

// MinSessionSecretLen is the minimum accepted length of SESSION_SECRET.
const MinSessionSecretLen = 32

// devSessionSecret is used only when DEV=true and SESSION_SECRET is unset.
const devSessionSecret = "coursedesk-dev-session-secret-do-not-use"

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreKind.
func (k *SessionStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "memory":
		*k = SessionStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreKind: %q (valid options: redis, memory)", v)
	}
}

// SessionConfig contains the server session cookie and AuthSession store settings.
type SessionConfig struct {
	// Secret signs the server session cookie.
	Secret string `env:"SESSION_SECRET"`

	// Store selects the AuthSession backend.
	Store SessionStoreKind `env:"SESSION_STORE" envDefault:"redis"`

	// CookieName is the name of the server session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"coursedesk_session"`

	// EncryptionKey seals stored AuthSession tokens. Empty stores them unencrypted.
	// A 64 character hex value is used as the raw AES-256 key; anything else is hashed.
	EncryptionKey string `env:"SESSION_ENCRYPTION_KEY"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize(isDev bool) {
	if s.Store == "" {
		s.Store = SessionStoreRedis
	}
	if s.CookieName == "" {
		s.CookieName = "coursedesk_session"
	}
	if s.Secret == "" && isDev {
		s.Secret = devSessionSecret
	}
}

// Validate rejects a missing or short secret outside dev mode.
func (s *SessionConfig) Validate(isDev bool) error {
	if isDev {
		return nil
	}
	if len(s.Secret) < MinSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLen)
	}
	return nil
}

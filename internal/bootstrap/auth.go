package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/coursedesk/config"
	"github.com/target/coursedesk/internal/adapters/devauth"
	"github.com/target/coursedesk/internal/adapters/memory"
	"github.com/target/coursedesk/internal/adapters/oidc"
	redisadapter "github.com/target/coursedesk/internal/adapters/redis"
	"github.com/target/coursedesk/internal/cryptoutil"
	"github.com/target/coursedesk/internal/ports"
)

// IdentityProviderConfig contains configuration for the identity provider adapter.
type IdentityProviderConfig struct {
	Auth   config.AuthConfig
	Logger *slog.Logger
}

// BuildIdentityProvider creates the identity provider adapter for the configured auth mode.
//
//nolint:ireturn // the adapter is chosen at runtime from AUTH_MODE.
func BuildIdentityProvider(ctx context.Context, cfg IdentityProviderConfig) (ports.IdentityProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		if cfg.Logger != nil {
			cfg.Logger.Warn("dev auth provider enabled; do not use in production",
				"accounts", len(cfg.Auth.DevAuth.Accounts))
		}
		prov, err := devauth.NewProvider(devauth.Config{
			Accounts:    cfg.Auth.DevAuth.Accounts,
			RedirectURL: cfg.Auth.IdP.RedirectURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		idp := cfg.Auth.IdP
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			IssuerURL:    idp.URL,
			ClientID:     idp.ClientID,
			ClientSecret: idp.APIKey,
			RedirectURL:  idp.RedirectURL,
			Scopes:       idp.Scopes(),
		})
		if err != nil {
			return nil, fmt.Errorf("create oidc provider: %w", err)
		}
		if cfg.Logger != nil {
			cfg.Logger.Info("oidc provider ready", "issuer", idp.URL, "client_id", idp.ClientID)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

// SessionStoreConfig contains configuration for the AuthSession store.
type SessionStoreConfig struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildSessionStore creates the AuthSession store selected by SESSION_STORE.
//
//nolint:ireturn // the backend is chosen at runtime from SESSION_STORE.
func BuildSessionStore(cfg SessionStoreConfig) (ports.SessionStore, error) {
	if cfg.Config == nil {
		return nil, errors.New("app config is required")
	}
	ttl := cfg.Config.Auth.SessionMaxAge

	switch cfg.Config.Session.Store {
	case config.SessionStoreMemory:
		if cfg.Logger != nil {
			cfg.Logger.Warn("in-memory session store enabled; sessions are lost on restart and not shared across workers")
		}
		return memory.NewSessionStore(ttl), nil

	case config.SessionStoreRedis, "":
		if cfg.RedisClient == nil {
			return nil, errors.New("redis session store selected but redis client not configured")
		}
		enc, err := cryptoutil.NewEncryptorFromKey(cfg.Config.Session.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("create session encryptor: %w", err)
		}
		if _, noop := enc.(cryptoutil.NoopEncryptor); noop && cfg.Logger != nil {
			cfg.Logger.Warn("SESSION_ENCRYPTION_KEY is empty; auth sessions are stored unencrypted")
		}
		return redisadapter.NewSessionStore(cfg.RedisClient, redisadapter.SessionStoreOptions{
			Prefix:    cfg.Config.Redis.KeyPrefix,
			TTL:       ttl,
			Encryptor: enc,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Config.Session.Store)
	}
}

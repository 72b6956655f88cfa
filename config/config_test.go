package config

import (
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseEnv(t *testing.T, vars map[string]string) (AppConfig, error) {
	t.Helper()
	var cfg AppConfig
	err := env.ParseWithOptions(&cfg, env.Options{Environment: vars})
	return cfg, err
}

func baseEnv() map[string]string {
	return map[string]string{
		"IDP_URL":     "https://idp.example.com/auth/v1/",
		"IDP_API_KEY": "service-key",
	}
}

func TestAppConfig_ParseDefaults(t *testing.T) {
	cfg, err := parseEnv(t, baseEnv())
	require.NoError(t, err)
	cfg.Sanitize()

	assert.Equal(t, AuthModeOAuth, cfg.Auth.Mode)
	assert.Equal(t, "https://idp.example.com/auth/v1", cfg.Auth.IdP.URL)
	assert.Equal(t, "coursedesk", cfg.Auth.IdP.ClientID)
	assert.Equal(t, "http://localhost:8080/callback", cfg.Auth.IdP.RedirectURL)
	assert.Equal(t, []string{"openid", "email", "profile", "offline_access"}, cfg.Auth.IdP.Scopes())
	assert.Equal(t, 10*time.Second, cfg.Auth.CallTimeout)
	assert.Equal(t, 720*time.Hour, cfg.Auth.SessionMaxAge)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "coursedesk_session", cfg.Session.CookieName)
	assert.Equal(t, "authsession:", cfg.Redis.KeyPrefix)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, []string{"dev@example.com:devpassword"}, cfg.Auth.DevAuth.Accounts)
}

func TestAppConfig_RequiredIdentityProvider(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		missing string
	}{
		{name: "missing url", vars: map[string]string{"IDP_API_KEY": "k"}, missing: "IDP_URL"},
		{name: "missing api key", vars: map[string]string{"IDP_URL": "https://idp.example.com"}, missing: "IDP_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseEnv(t, tt.vars)
			require.NoError(t, err)
			cfg.Sanitize()
			err = cfg.Auth.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestAppConfig_MockModeNeedsNoIdentityProvider(t *testing.T) {
	cfg, err := parseEnv(t, map[string]string{"AUTH_MODE": "mock"})
	require.NoError(t, err)
	cfg.Sanitize()
	require.NoError(t, cfg.Auth.Validate())
	assert.Equal(t, []string{"dev@example.com:devpassword"}, cfg.Auth.DevAuth.Accounts)
}

func TestAppConfig_ParseOverrides(t *testing.T) {
	vars := baseEnv()
	vars["AUTH_MODE"] = "MOCK"
	vars["DEV_AUTH_ACCOUNTS"] = "a@example.com:pw1;b@example.com:pw2"
	vars["AUTH_CALL_TIMEOUT"] = "3s"
	vars["SESSION_STORE"] = "memory"
	vars["DB_MAX_CONNS"] = "4"
	vars["REDIS_USE_CLUSTER"] = "true"
	vars["REDIS_CLUSTER_NODES"] = "r1:6379,r2:6379"

	cfg, err := parseEnv(t, vars)
	require.NoError(t, err)
	cfg.Sanitize()

	assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, []string{"a@example.com:pw1", "b@example.com:pw2"}, cfg.Auth.DevAuth.Accounts)
	assert.Equal(t, 3*time.Second, cfg.Auth.CallTimeout)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, int32(4), cfg.Postgres.MaxConns)
	assert.True(t, cfg.Redis.UseCluster)
	assert.Equal(t, []string{"r1:6379", "r2:6379"}, cfg.Redis.ClusterNodes)
}

func TestAppConfig_ParseRejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "auth mode", key: "AUTH_MODE", val: "saml"},
		{name: "session store", key: "SESSION_STORE", val: "memcached"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := baseEnv()
			vars[tt.key] = tt.val
			_, err := parseEnv(t, vars)
			require.Error(t, err)
		})
	}
}

func TestAppConfig_Validate(t *testing.T) {
	longSecret := strings.Repeat("s", MinSessionSecretLen)

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{
			name:   "production with secret",
			mutate: func(c *AppConfig) { c.Session.Secret = longSecret },
		},
		{
			name:    "production without secret",
			mutate:  func(c *AppConfig) {},
			wantErr: "SESSION_SECRET",
		},
		{
			name:    "production with short secret",
			mutate:  func(c *AppConfig) { c.Session.Secret = "short" },
			wantErr: "SESSION_SECRET",
		},
		{
			name:   "dev mode falls back to dev secret",
			mutate: func(c *AppConfig) { c.IsDev = true },
		},
		{
			name: "mock mode needs accounts",
			mutate: func(c *AppConfig) {
				c.Session.Secret = longSecret
				c.Auth.Mode = AuthModeMock
				c.Auth.DevAuth.Accounts = nil
			},
			wantErr: "DEV_AUTH_ACCOUNTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseEnv(t, baseEnv())
			require.NoError(t, err)
			tt.mutate(&cfg)
			cfg.Sanitize()

			err = cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{}
	h.Sanitize()
	assert.Equal(t, ":8080", h.Addr)
	assert.Equal(t, int64(defaultMaxBodyBytes), h.MaxBodyBytes)
}

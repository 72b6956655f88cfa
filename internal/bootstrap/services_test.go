package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/coursedesk/config"
	"github.com/target/coursedesk/internal/adapters/devauth"
	"github.com/target/coursedesk/internal/adapters/memory"
)

func testAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Auth.Mode = config.AuthModeMock
	cfg.Auth.CallTimeout = 2 * time.Second
	cfg.Auth.SessionMaxAge = time.Hour
	cfg.Session.Secret = strings.Repeat("s", config.MinSessionSecretLen)
	cfg.Session.Store = config.SessionStoreMemory
	cfg.HTTP.MaxBodyBytes = 1 << 10
	return cfg
}

func newTestAdapters(t *testing.T) (ServiceAdapters, pgxmock.PgxPoolIface) {
	t.Helper()
	prov, err := devauth.NewProvider(devauth.Config{Accounts: []string{"ada@example.com:lovelace"}})
	require.NoError(t, err)

	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, pool.ExpectationsWereMet())
		pool.Close()
	})

	return ServiceAdapters{Provider: prov, Sessions: memory.NewSessionStore(time.Hour), Pool: pool}, pool
}

func TestNewServices_RequiresAdapters(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)

	_, err = NewServices(&ServiceDeps{Config: testAppConfig()})
	assert.Error(t, err)
}

func TestBuildHTTPHandler_WiresServices(t *testing.T) {
	cfg := testAppConfig()
	adapters, pool := newTestAdapters(t)

	services, err := NewServices(&ServiceDeps{Config: cfg, Adapters: adapters})
	require.NoError(t, err)
	require.Contains(t, services.Ready, "database")
	require.Contains(t, services.Ready, "session_store")

	srv := httptest.NewServer(BuildHTTPHandler(HandlerConfig{Config: cfg, Services: services}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Post(srv.URL+"/login", "application/json",
		strings.NewReader(`{"email":"ada@example.com","password":"lovelace"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/api/auth/status")
	require.NoError(t, err)
	var status struct {
		Authenticated bool              `json:"authenticated"`
		User          map[string]string `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.True(t, status.Authenticated)
	assert.Equal(t, "ada@example.com", status.User["email"])

	pool.ExpectPing()
	resp, err = client.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Post(srv.URL+"/api/courses", "application/json",
		strings.NewReader(`{"name":"`+strings.Repeat("x", 2<<10)+`"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	apperrors "github.com/target/coursedesk/internal/errors"
	"github.com/target/coursedesk/internal/service"
)

func newAuthHandlers(t *testing.T, svc *stubIdentityService) *AuthHandlers {
	t.Helper()
	return &AuthHandlers{Svc: svc, Sessions: newTestSessions(t)}
}

func TestAuthHandlers_Login(t *testing.T) {
	t.Run("success writes server session", func(t *testing.T) {
		var usedKey string
		svc := &stubIdentityService{
			signInFunc: func(_ context.Context, key, email, password string) (domainauth.Identity, error) {
				usedKey = key
				assert.Equal(t, "ada@example.com", email)
				assert.Equal(t, "password", password)
				return domainauth.Identity{ID: "user-ada", Email: email}, nil
			},
		}
		h := newAuthHandlers(t, svc)

		req := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"email":" ada@example.com ","password":"password"}`))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, "Login successful", body["message"])
		assert.Equal(t, map[string]any{"id": "user-ada", "email": "ada@example.com"}, body["user"])

		resp := rec.Result()
		t.Cleanup(func() { _ = resp.Body.Close() })
		c := cookieNamed(resp, DefaultSessionCookieName)
		require.NotNil(t, c)
		next := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		next.AddCookie(c)
		got := h.Sessions.Read(next)
		assert.Equal(t, usedKey, got.ID)
		assert.Equal(t, "user-ada", got.PrincipalID)
		assert.True(t, got.Authenticated)
	})

	t.Run("replaces an existing server session", func(t *testing.T) {
		var usedKey string
		svc := &stubIdentityService{
			signInFunc: func(_ context.Context, key, email, _ string) (domainauth.Identity, error) {
				usedKey = key
				return domainauth.Identity{ID: "user-ada", Email: email}, nil
			},
		}
		h := newAuthHandlers(t, svc)

		req := withServerSession(t, h.Sessions, httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"email":"ada@example.com","password":"password"}`)), "sid-old")
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"sid-old"}, svc.signedOut)
		assert.NotEqual(t, "sid-old", usedKey)
	})

	t.Run("failed sign-in keeps the existing session", func(t *testing.T) {
		svc := &stubIdentityService{
			signInFunc: func(context.Context, string, string, string) (domainauth.Identity, error) {
				return domainauth.Identity{}, apperrors.InvalidCredentials("Invalid email or password")
			},
		}
		h := newAuthHandlers(t, svc)

		req := withServerSession(t, h.Sessions, httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"email":"ada@example.com","password":"nope"}`)), "sid-old")
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, svc.signedOut)
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := &stubIdentityService{
			signInFunc: func(context.Context, string, string, string) (domainauth.Identity, error) {
				return domainauth.Identity{}, apperrors.InvalidCredentials("Invalid email or password")
			},
		}
		h := newAuthHandlers(t, svc)

		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.c","password":"nope"}`)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", decodeEnvelope(t, rec)["message"])
		assert.Nil(t, cookieNamed(rec.Result(), DefaultSessionCookieName))
	})

	t.Run("missing fields", func(t *testing.T) {
		h := newAuthHandlers(t, &stubIdentityService{})
		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.c"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email and password are required", decodeEnvelope(t, rec)["message"])
	})
}

func TestAuthHandlers_Logout(t *testing.T) {
	svc := &stubIdentityService{}
	h := newAuthHandlers(t, svc)

	req := withServerSession(t, h.Sessions, httptest.NewRequest(http.MethodPost, "/logout", nil), "sid-1")
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeEnvelope(t, rec)["message"])
	assert.Equal(t, []string{"sid-1"}, svc.signedOut)
	c := cookieNamed(rec.Result(), DefaultSessionCookieName)
	require.NotNil(t, c)
	assert.Negative(t, c.MaxAge)
}

func TestAuthHandlers_Status(t *testing.T) {
	h := newAuthHandlers(t, &stubIdentityService{})

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))
	assert.Equal(t, map[string]any{"authenticated": false}, decodeEnvelope(t, rec))

	id := &domainauth.Identity{ID: "user-ada", Email: "ada@example.com"}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req = req.WithContext(SetIdentityInContext(req.Context(), id))
	rec = httptest.NewRecorder()
	h.Status(rec, req)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, map[string]any{"id": "user-ada", "email": "ada@example.com", "username": "ada"}, body["user"])
}

func TestAuthHandlers_SignIn(t *testing.T) {
	var gotProvider string
	svc := &stubIdentityService{
		beginFunc: func(_ context.Context, provider, _ string) (service.OAuthStart, error) {
			gotProvider = provider
			return service.OAuthStart{URL: "https://idp.example.com/authorize", State: "st", Verifier: "ver"}, nil
		},
	}
	h := newAuthHandlers(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/signin/github?next=/tasks", nil)
	req.SetPathValue("provider", "GitHub")
	rec := httptest.NewRecorder()
	h.SignIn(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://idp.example.com/authorize", rec.Header().Get("Location"))
	assert.Equal(t, "github", gotProvider)

	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	want := map[string]string{cookieOAuthState: "st", cookieOAuthVerifier: "ver", cookiePostLoginRedir: "/tasks"}
	for name, value := range want {
		c := cookieNamed(resp, name)
		require.NotNil(t, c, name)
		assert.Equal(t, value, c.Value)
		assert.Equal(t, 600, c.MaxAge)
		assert.True(t, c.HttpOnly)
	}
}

func TestAuthHandlers_SignIn_Failures(t *testing.T) {
	t.Run("invalid provider name", func(t *testing.T) {
		h := newAuthHandlers(t, &stubIdentityService{})
		req := httptest.NewRequest(http.MethodGet, "/signin/x", nil)
		req.SetPathValue("provider", "../evil")
		rec := httptest.NewRecorder()
		h.SignIn(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider unavailable", func(t *testing.T) {
		svc := &stubIdentityService{
			beginFunc: func(context.Context, string, string) (service.OAuthStart, error) {
				return service.OAuthStart{}, apperrors.ProviderUnavailable(errors.New("dial"), "Identity provider unavailable")
			},
		}
		h := newAuthHandlers(t, svc)
		req := httptest.NewRequest(http.MethodGet, "/signin/github", nil)
		req.SetPathValue("provider", "github")
		rec := httptest.NewRecorder()
		h.SignIn(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?error=provider_unavailable", rec.Header().Get("Location"))
	})
}

func callbackRequest(query string, cookies map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/callback?"+query, nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req
}

func TestAuthHandlers_Callback_Success(t *testing.T) {
	var (
		exchanged string
		activated []string
	)
	svc := &stubIdentityService{
		exchangeFunc: func(_ context.Context, code, verifier string) (domainauth.Identity, domainauth.AuthSession, error) {
			exchanged = code + "/" + verifier
			return domainauth.Identity{ID: "user-ada", Email: "ada@example.com"},
				domainauth.AuthSession{AccessToken: "at-1", RefreshToken: "rt-1"}, nil
		},
		setFunc: func(_ context.Context, key, at, rt string) error {
			activated = []string{key, at, rt}
			return nil
		},
	}
	h := newAuthHandlers(t, svc)

	req := callbackRequest("code=c1&state=st", map[string]string{
		cookieOAuthState:     "st",
		cookieOAuthVerifier:  "ver",
		cookiePostLoginRedir: "/tasks",
	})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/tasks", rec.Header().Get("Location"))
	assert.Equal(t, "c1/ver", exchanged)
	require.Len(t, activated, 3)
	assert.Equal(t, []string{"at-1", "rt-1"}, activated[1:])

	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	c := cookieNamed(resp, DefaultSessionCookieName)
	require.NotNil(t, c)
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(c)
	assert.Equal(t, activated[0], h.Sessions.Key(next), "server session keys the activated AuthSession")

	for _, name := range []string{cookieOAuthState, cookieOAuthVerifier, cookiePostLoginRedir} {
		cleared := cookieNamed(resp, name)
		require.NotNil(t, cleared, name)
		assert.Negative(t, cleared.MaxAge)
	}
}

func TestAuthHandlers_Callback_RetiresPreviousSession(t *testing.T) {
	svc := &stubIdentityService{}
	h := newAuthHandlers(t, svc)

	req := callbackRequest("code=c1&state=st", map[string]string{
		cookieOAuthState:    "st",
		cookieOAuthVerifier: "ver",
	})
	req = withServerSession(t, h.Sessions, req, "sid-old")
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, []string{"sid-old"}, svc.signedOut)
}

func TestAuthHandlers_Callback_NextParameter(t *testing.T) {
	h := newAuthHandlers(t, &stubIdentityService{})
	cookies := map[string]string{cookieOAuthState: "st", cookieOAuthVerifier: "ver", cookiePostLoginRedir: "/tasks"}

	rec := httptest.NewRecorder()
	h.Callback(rec, callbackRequest("code=c&state=st&next=%2Fcourses", cookies))
	assert.Equal(t, "/courses", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.Callback(rec, callbackRequest("code=c&state=st&next=https%3A%2F%2Fevil.example", cookies))
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAuthHandlers_Callback_Failures(t *testing.T) {
	good := map[string]string{cookieOAuthState: "st", cookieOAuthVerifier: "ver"}

	tests := []struct {
		name    string
		query   string
		cookies map[string]string
		svc     *stubIdentityService
		reason  string
	}{
		{name: "provider error", query: "error=access_denied", cookies: good, reason: "access_denied"},
		{name: "provider error with junk", query: "error=%3Cscript%3E", cookies: good, reason: "auth_failed"},
		{name: "missing code", query: "state=st", cookies: good, reason: "missing_code"},
		{name: "state mismatch", query: "code=c&state=other", cookies: good, reason: "invalid_state"},
		{name: "no state cookie", query: "code=c&state=st", reason: "invalid_state"},
		{name: "no verifier", query: "code=c&state=st", cookies: map[string]string{cookieOAuthState: "st"}, reason: "missing_verifier"},
		{
			name: "exchange rejected", query: "code=c&state=st", cookies: good, reason: "exchange_failed",
			svc: &stubIdentityService{
				exchangeFunc: func(context.Context, string, string) (domainauth.Identity, domainauth.AuthSession, error) {
					return domainauth.Identity{}, domainauth.AuthSession{},
						apperrors.Wrap(errors.New("invalid_grant"), apperrors.ErrCodeOAuthExchangeFailed, "OAuth code exchange failed")
				},
			},
		},
		{
			name: "activation fails", query: "code=c&state=st", cookies: good, reason: "auth_failed",
			svc: &stubIdentityService{
				setFunc: func(context.Context, string, string, string) error { return errors.New("redis down") },
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := tt.svc
			if svc == nil {
				svc = &stubIdentityService{}
			}
			h := newAuthHandlers(t, svc)
			rec := httptest.NewRecorder()
			h.Callback(rec, callbackRequest(tt.query, tt.cookies))

			require.Equal(t, http.StatusFound, rec.Code)
			loc, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "/login", loc.Path)
			assert.Equal(t, tt.reason, loc.Query().Get("error"))
			assert.Nil(t, cookieNamed(rec.Result(), DefaultSessionCookieName))
		})
	}
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/tasks", "/tasks"},
		{"/tasks?view=week", "/tasks?view=week"},
		{"https://evil.example/", "/"},
		{"//evil.example/", "/"},
		{`/\evil.example`, "/"},
		{"tasks", "/"},
		{"javascript:alert(1)", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, safeRedirectPath(tt.in))
		})
	}
}

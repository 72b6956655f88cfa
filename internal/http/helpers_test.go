package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/service"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestSessions(t *testing.T) *SessionManager {
	t.Helper()
	return NewSessionManager(SessionManagerOptions{
		Secret: testSecret,
		Cookie: CookieConfig{MaxAge: time.Hour},
	})
}

// withServerSession attaches a signed session cookie for key to req.
func withServerSession(t *testing.T, m *SessionManager, req *http.Request, key string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, m.Write(rec, seed, domainauth.ServerSession{ID: key, PrincipalID: "user-ada", Authenticated: true}))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// stubResolver resolves a fixed set of keys.
type stubResolver struct {
	identities map[string]*domainauth.Identity
	calls      int
}

func (s *stubResolver) Resolve(_ context.Context, key string) *domainauth.Identity {
	s.calls++
	return s.identities[key]
}

// stubIdentityService is a test double for IdentityService.
type stubIdentityService struct {
	signInFunc   func(ctx context.Context, key, email, password string) (domainauth.Identity, error)
	beginFunc    func(ctx context.Context, provider, redirectURL string) (service.OAuthStart, error)
	exchangeFunc func(ctx context.Context, code, verifier string) (domainauth.Identity, domainauth.AuthSession, error)
	setFunc      func(ctx context.Context, key, accessToken, refreshToken string) error

	signedOut []string
}

func (s *stubIdentityService) SignInWithPassword(
	ctx context.Context,
	key, email, password string,
) (domainauth.Identity, error) {
	if s.signInFunc != nil {
		return s.signInFunc(ctx, key, email, password)
	}
	return domainauth.Identity{ID: "user-ada", Email: email}, nil
}

func (s *stubIdentityService) BeginOAuth(ctx context.Context, provider, redirectURL string) (service.OAuthStart, error) {
	if s.beginFunc != nil {
		return s.beginFunc(ctx, provider, redirectURL)
	}
	return service.OAuthStart{
		URL:      "https://idp.example.com/authorize?state=test-state",
		State:    "test-state",
		Verifier: "test-verifier",
	}, nil
}

func (s *stubIdentityService) ExchangeCodeForSession(
	ctx context.Context,
	code, verifier string,
) (domainauth.Identity, domainauth.AuthSession, error) {
	if s.exchangeFunc != nil {
		return s.exchangeFunc(ctx, code, verifier)
	}
	return domainauth.Identity{ID: "user-ada", Email: "ada@example.com"},
		domainauth.AuthSession{AccessToken: "at", RefreshToken: "rt"}, nil
}

func (s *stubIdentityService) SetSession(ctx context.Context, key, accessToken, refreshToken string) error {
	if s.setFunc != nil {
		return s.setFunc(ctx, key, accessToken, refreshToken)
	}
	return nil
}

func (s *stubIdentityService) SignOut(_ context.Context, key string) error {
	s.signedOut = append(s.signedOut, key)
	return nil
}

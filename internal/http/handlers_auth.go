package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	apperrors "github.com/target/coursedesk/internal/errors"
	"github.com/target/coursedesk/internal/service"
)

const (
	cookieOAuthState     = "oauth_state"
	cookieOAuthVerifier  = "oauth_verifier"
	cookiePostLoginRedir = "post_login_redirect"

	oauthCookieMaxAge = 10 * time.Minute
)

var (
	providerNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)
	errorReasonPattern  = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)
)

// IdentityService is the part of service.IdentityClient used by the auth handlers.
type IdentityService interface {
	SignInWithPassword(ctx context.Context, key, email, password string) (domainauth.Identity, error)
	BeginOAuth(ctx context.Context, provider, redirectURL string) (service.OAuthStart, error)
	ExchangeCodeForSession(ctx context.Context, code, verifier string) (domainauth.Identity, domainauth.AuthSession, error)
	SetSession(ctx context.Context, key, accessToken, refreshToken string) error
	SignOut(ctx context.Context, key string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc      IdentityService
	Sessions *SessionManager
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login signs in with email and password.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		WriteAppError(w, r, apperrors.Validation("Email and password are required"), h.logger())
		return
	}

	// A fresh key on every sign-in; a pre-login cookie is never promoted.
	key := uuid.NewString()
	id, err := h.Svc.SignInWithPassword(r.Context(), key, req.Email, req.Password)
	if err != nil {
		h.logger().InfoContext(r.Context(), "password sign-in failed", "code", apperrors.GetCode(err))
		WriteAppError(w, r, err, h.logger())
		return
	}
	h.retire(r, h.Sessions.Key(r))

	if err := h.writeServerSession(w, r, key, id); err != nil {
		WriteAppError(w, r, err, h.logger())
		return
	}

	WriteSuccess(w, http.StatusOK, "Login successful", Envelope{
		"user": map[string]string{"id": id.ID, "email": id.Email},
	})
}

// retire signs out a server session key that a new sign-in replaces. Best effort.
func (h *AuthHandlers) retire(r *http.Request, oldKey string) {
	if oldKey == "" {
		return
	}
	if err := h.Svc.SignOut(r.Context(), oldKey); err != nil {
		h.logger().WarnContext(r.Context(), "retire previous session failed", "error", err)
	}
}

// Logout signs out the current session and clears the server session cookie.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if key := h.Sessions.Key(r); key != "" {
		if err := h.Svc.SignOut(r.Context(), key); err != nil {
			h.logger().WarnContext(r.Context(), "sign-out failed", "error", err)
		}
	}
	if err := h.Sessions.Clear(w, r); err != nil {
		h.logger().WarnContext(r.Context(), "clear server session failed", "error", err)
	}

	WriteSuccess(w, http.StatusOK, "Logout successful", nil)
}

// Status reports whether the request carries a resolvable identity.
// GET /api/auth/status, behind OptionalAuth.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]string{
			"id":       id.ID,
			"email":    id.Email,
			"username": id.Username(),
		},
	})
}

// SignIn starts an OAuth sign-in with PKCE.
// GET /signin/{provider}?next=<optional_redirect>.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	provider := strings.ToLower(r.PathValue("provider"))
	if !providerNamePattern.MatchString(provider) {
		WriteAppError(w, r, apperrors.Validation("Unknown sign-in provider"), h.logger())
		return
	}

	start, err := h.Svc.BeginOAuth(r.Context(), provider, "")
	if err != nil {
		h.logger().WarnContext(r.Context(), "begin oauth failed", "provider", provider, "error", err)
		h.redirectLoginError(w, r, reasonFor(err))
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{
		State:       start.State,
		Verifier:    start.Verifier,
		RedirectURI: safeRedirectPath(r.URL.Query().Get("next")),
	})
	http.Redirect(w, r, start.URL, http.StatusFound)
}

// Callback completes the OAuth sign-in: it exchanges the code, activates the session and
// writes the server session. Every failure redirects to /login?error=<reason>.
// GET /callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	// Single use; the request still carries the values read below.
	h.clearOAuthCookies(w, r)

	if reason := q.Get("error"); reason != "" {
		if !errorReasonPattern.MatchString(reason) {
			reason = "auth_failed"
		}
		h.redirectLoginError(w, r, reason)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.redirectLoginError(w, r, "missing_code")
		return
	}
	stateCookie, err := r.Cookie(cookieOAuthState)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != q.Get("state") {
		h.redirectLoginError(w, r, "invalid_state")
		return
	}
	verifierCookie, err := r.Cookie(cookieOAuthVerifier)
	if err != nil || verifierCookie.Value == "" {
		h.redirectLoginError(w, r, "missing_verifier")
		return
	}

	id, sess, err := h.Svc.ExchangeCodeForSession(r.Context(), code, verifierCookie.Value)
	if err != nil {
		h.logger().WarnContext(r.Context(), "code exchange failed", "code", apperrors.GetCode(err))
		h.redirectLoginError(w, r, reasonFor(err))
		return
	}

	key := uuid.NewString()
	if err := h.Svc.SetSession(r.Context(), key, sess.AccessToken, sess.RefreshToken); err != nil {
		h.logger().WarnContext(r.Context(), "activate session failed", "error", err)
		h.redirectLoginError(w, r, reasonFor(err))
		return
	}
	h.retire(r, h.Sessions.Key(r))
	if err := h.writeServerSession(w, r, key, id); err != nil {
		h.logger().ErrorContext(r.Context(), "write server session failed", "error", err)
		h.redirectLoginError(w, r, "auth_failed")
		return
	}

	h.logger().InfoContext(r.Context(), "oauth sign-in", "principal_id", id.ID)
	http.Redirect(w, r, h.postLoginRedirect(r), http.StatusFound)
}

func (h *AuthHandlers) writeServerSession(w http.ResponseWriter, r *http.Request, key string, id domainauth.Identity) error {
	return h.Sessions.Write(w, r, domainauth.ServerSession{
		ID:            key,
		PrincipalID:   id.ID,
		Email:         id.Email,
		Authenticated: true,
	})
}

// redirectLoginError sends the browser back to the login page with a machine-readable reason.
func (h *AuthHandlers) redirectLoginError(w http.ResponseWriter, r *http.Request, reason string) {
	u := url.URL{Path: "/login"}
	u.RawQuery = url.Values{"error": {reason}}.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// reasonFor classifies a sign-in failure for the login page.
func reasonFor(err error) string {
	switch {
	case apperrors.IsOAuthExchangeFailed(err):
		return "exchange_failed"
	case apperrors.IsInvalidCredentials(err), apperrors.IsAuthenticationRequired(err):
		return "access_denied"
	case apperrors.IsProviderUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		return "provider_unavailable"
	default:
		return "auth_failed"
	}
}

// postLoginRedirect prefers an explicit next parameter over the cookie set at sign-in.
func (h *AuthHandlers) postLoginRedirect(r *http.Request) string {
	if next := r.URL.Query().Get("next"); next != "" {
		return safeRedirectPath(next)
	}
	if c, err := r.Cookie(cookiePostLoginRedir); err == nil {
		return safeRedirectPath(c.Value)
	}
	return "/"
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.Sessions.CookieDomain(),
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearOAuthCookies(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{cookieOAuthState, cookieOAuthVerifier, cookiePostLoginRedir} {
		if _, err := r.Cookie(name); err == nil {
			h.clearCookie(w, r, name)
		}
	}
}

// oauthCookieParams groups values needed to set OAuth cookies (≤3 params rule).
type oauthCookieParams struct {
	State       string
	Verifier    string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, the PKCE verifier and the post-login redirect in short-lived cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	values := []struct{ name, value string }{
		{cookieOAuthState, p.State},
		{cookieOAuthVerifier, p.Verifier},
		{cookiePostLoginRedir, p.RedirectURI},
	}
	for _, v := range values {
		http.SetCookie(w, &http.Cookie{
			Name:     v.name,
			Value:    v.value,
			Path:     "/",
			Domain:   h.Sessions.CookieDomain(),
			HttpOnly: true,
			Secure:   isSecureRequest(r),
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(oauthCookieMaxAge.Seconds()),
		})
	}
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	// "//evil.example" and "/\evil.example" are treated as hosts by browsers.
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, `/\`) {
		return "/"
	}
	return candidate
}

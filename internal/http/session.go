package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
)

// DefaultSessionCookieName is used when SessionManagerOptions.Name is empty.
const DefaultSessionCookieName = "coursedesk_session"

const (
	valueID            = "id"
	valuePrincipalID   = "principal_id"
	valueEmail         = "email"
	valueAuthenticated = "authenticated"
)

// CookieConfig controls attributes shared by every cookie the service sets.
type CookieConfig struct {
	Domain string
	MaxAge time.Duration
}

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Secret []byte
	Name   string
	Cookie CookieConfig
}

// SessionManager reads and writes the ServerSession carried in a signed cookie.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	cookie CookieConfig
}

// NewSessionManager constructs a SessionManager. It panics without a signing secret.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	if len(opts.Secret) == 0 {
		panic("session secret is required")
	}
	name := opts.Name
	if name == "" {
		name = DefaultSessionCookieName
	}
	store := sessions.NewCookieStore(opts.Secret)
	if opts.Cookie.MaxAge > 0 {
		// Also bounds the signed timestamp accepted on decode.
		store.MaxAge(int(opts.Cookie.MaxAge.Seconds()))
	}
	return &SessionManager{
		store:  store,
		name:   name,
		cookie: opts.Cookie,
	}
}

// Name returns the cookie name.
func (m *SessionManager) Name() string { return m.name }

// CookieDomain returns the configured cookie domain.
func (m *SessionManager) CookieDomain() string { return m.cookie.Domain }

// Read returns the request's ServerSession. A missing, tampered or expired cookie yields the zero value.
func (m *SessionManager) Read(r *http.Request) domainauth.ServerSession {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess.IsNew {
		return domainauth.ServerSession{}
	}
	id, _ := sess.Values[valueID].(string)
	if id == "" {
		return domainauth.ServerSession{}
	}
	principal, _ := sess.Values[valuePrincipalID].(string)
	email, _ := sess.Values[valueEmail].(string)
	authed, _ := sess.Values[valueAuthenticated].(bool)
	return domainauth.ServerSession{ID: id, PrincipalID: principal, Email: email, Authenticated: authed}
}

// Key returns the session store key of the request's ServerSession, or "".
func (m *SessionManager) Key(r *http.Request) string {
	return m.Read(r).ID
}

// Write stores s in the session cookie.
func (m *SessionManager) Write(w http.ResponseWriter, r *http.Request, s domainauth.ServerSession) error {
	sess, err := m.store.New(r, m.name)
	if sess == nil {
		return err
	}
	sess.Options = m.options(r, int(m.cookie.MaxAge.Seconds()))
	sess.Values[valueID] = s.ID
	sess.Values[valuePrincipalID] = s.PrincipalID
	sess.Values[valueEmail] = s.Email
	sess.Values[valueAuthenticated] = s.Authenticated
	return sess.Save(r, w)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.store.New(r, m.name)
	if sess == nil {
		return err
	}
	sess.Options = m.options(r, -1)
	return sess.Save(r, w)
}

func (m *SessionManager) options(r *http.Request, maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		Domain:   m.cookie.Domain,
		MaxAge:   maxAge,
		Secure:   isSecureRequest(r),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// isSecureRequest reports whether the request arrived over TLS, directly or via a proxy.
func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

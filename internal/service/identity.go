package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	apperrors "github.com/target/coursedesk/internal/errors"
	"github.com/target/coursedesk/internal/ports"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// DefaultCallTimeout bounds every provider and session store call.
const DefaultCallTimeout = 10 * time.Second

// IdentityClientConfig holds optional IdentityClient settings.
type IdentityClientConfig struct {
	Timeout time.Duration // default DefaultCallTimeout
	Clock   Clock         // default SystemClock
	Logger  *slog.Logger  // default slog.Default()
}

// IdentityClientOptions groups dependencies for IdentityClient.
type IdentityClientOptions struct {
	Provider ports.IdentityProvider
	Sessions ports.SessionStore
	Config   IdentityClientConfig
}

// IdentityClient owns the AuthSession for each server session key: it signs in,
// activates, restores, refreshes and signs out sessions against the identity provider.
type IdentityClient struct {
	provider ports.IdentityProvider
	sessions ports.SessionStore
	timeout  time.Duration
	clock    Clock
	logger   *slog.Logger
	flights  singleflight.Group
}

// NewIdentityClient constructs a new IdentityClient.
func NewIdentityClient(opts IdentityClientOptions) *IdentityClient {
	if opts.Provider == nil {
		panic("IdentityProvider is required")
	}
	if opts.Sessions == nil {
		panic("SessionStore is required")
	}

	timeout := opts.Config.Timeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &IdentityClient{
		provider: opts.Provider,
		sessions: opts.Sessions,
		timeout:  timeout,
		clock:    clockOrSystem(opts.Config.Clock),
		logger:   logger.With("component", "identity_client"),
	}
}

// OAuthStart is the result of beginning an OAuth sign-in.
type OAuthStart struct {
	URL      string
	State    string
	Verifier string
}

// SignInWithPassword authenticates with the provider and stores the resulting
// AuthSession as current for key.
func (c *IdentityClient) SignInWithPassword(ctx context.Context, key, email, password string) (domainauth.Identity, error) {
	if key == "" {
		return domainauth.Identity{}, errors.New("session key is required")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sess, err := c.provider.PasswordSignIn(ctx, email, password)
	if err != nil {
		return domainauth.Identity{}, mapDeadline(err)
	}
	sess = withTokenExpiry(sess)

	id, err := c.provider.UserInfo(ctx, sess.AccessToken)
	if err != nil {
		return domainauth.Identity{}, mapDeadline(err)
	}
	if err := c.sessions.Save(ctx, key, sess); err != nil {
		return domainauth.Identity{}, fmt.Errorf("save auth session: %w", err)
	}

	c.logger.InfoContext(ctx, "password sign-in", "principal_id", id.ID)
	return id, nil
}

// BeginOAuth builds a provider authorization URL with a fresh state and PKCE verifier.
// Nothing is persisted; the caller carries state and verifier to the callback.
func (c *IdentityClient) BeginOAuth(ctx context.Context, provider, redirectURL string) (OAuthStart, error) {
	state, err := randomState()
	if err != nil {
		return OAuthStart{}, fmt.Errorf("generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	u, err := c.provider.AuthCodeURL(ctx, ports.AuthCodeURLInput{
		State:       state,
		Verifier:    verifier,
		RedirectURL: redirectURL,
		Provider:    provider,
	})
	if err != nil {
		return OAuthStart{}, fmt.Errorf("build authorization URL: %w", err)
	}
	return OAuthStart{URL: u, State: state, Verifier: verifier}, nil
}

// ExchangeCodeForSession trades an authorization code for a token pair and the identity
// it belongs to. The session is not activated; call SetSession with the result.
func (c *IdentityClient) ExchangeCodeForSession(
	ctx context.Context,
	code, verifier string,
) (domainauth.Identity, domainauth.AuthSession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sess, err := c.provider.Exchange(ctx, ports.ExchangeInput{Code: code, Verifier: verifier})
	if err != nil {
		return domainauth.Identity{}, domainauth.AuthSession{}, mapDeadline(err)
	}
	sess = withTokenExpiry(sess)

	id, err := c.provider.UserInfo(ctx, sess.AccessToken)
	if err != nil {
		return domainauth.Identity{}, domainauth.AuthSession{}, mapDeadline(err)
	}
	return id, sess, nil
}

// SetSession activates the token pair as current for key, replacing any stored session.
// Expiry comes from the access token's exp claim; opaque tokens are refreshed once to learn it.
func (c *IdentityClient) SetSession(ctx context.Context, key, accessToken, refreshToken string) error {
	if key == "" {
		return errors.New("session key is required")
	}
	if accessToken == "" {
		return apperrors.Validation("access token is required")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sess := withTokenExpiry(domainauth.AuthSession{AccessToken: accessToken, RefreshToken: refreshToken})
	if sess.ExpiresAt.IsZero() && refreshToken != "" {
		refreshed, err := c.provider.Refresh(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("refresh opaque session: %w", mapDeadline(err))
		}
		sess = withTokenExpiry(refreshed)
	}

	if err := c.sessions.Save(ctx, key, sess); err != nil {
		return fmt.Errorf("save auth session: %w", err)
	}
	return nil
}

// CurrentSession returns the current AuthSession for key, or nil when there is none.
// An absent session gets one restore pass; an expired one is refreshed.
func (c *IdentityClient) CurrentSession(ctx context.Context, key string) (*domainauth.AuthSession, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sess, err := c.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		c.logger.DebugContext(ctx, "no auth session, attempting restore", "session_key_len", len(key))
		if sess, err = c.load(ctx, key); err != nil || sess == nil {
			return nil, err
		}
	}

	if !sess.Expired(c.clock.Now()) {
		return sess, nil
	}
	return c.refresh(ctx, key)
}

// IdentityFor resolves the identity bound to sess. A rejected access token yields nil.
func (c *IdentityClient) IdentityFor(ctx context.Context, sess domainauth.AuthSession) (*domainauth.Identity, error) {
	if !sess.Valid() {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	id, err := c.provider.UserInfo(ctx, sess.AccessToken)
	if err != nil {
		if apperrors.IsAuthenticationRequired(err) {
			return nil, nil
		}
		return nil, mapDeadline(err)
	}
	return &id, nil
}

// CurrentUser returns the identity for key's current session, or nil.
func (c *IdentityClient) CurrentUser(ctx context.Context, key string) *domainauth.Identity {
	sess, err := c.CurrentSession(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "current session unavailable", "error", err)
		return nil
	}
	if sess == nil {
		return nil
	}
	id, err := c.IdentityFor(ctx, *sess)
	if err != nil {
		c.logger.WarnContext(ctx, "identity lookup failed", "error", err)
		return nil
	}
	return id
}

// SignOut revokes both tokens of key's session with the provider and deletes it from the store.
// Revocation is best effort; deletion always happens.
func (c *IdentityClient) SignOut(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sess, err := c.load(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "load session for sign-out failed", "error", err)
	}
	if sess != nil {
		for _, token := range []string{sess.RefreshToken, sess.AccessToken} {
			if token == "" {
				continue
			}
			if revokeErr := c.provider.Revoke(ctx, token); revokeErr != nil {
				c.logger.WarnContext(ctx, "token revocation failed", "error", revokeErr)
			}
		}
	}

	if err := c.sessions.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete auth session: %w", err)
	}
	return nil
}

func (c *IdentityClient) load(ctx context.Context, key string) (*domainauth.AuthSession, error) {
	sess, err := c.sessions.Load(ctx, key)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.ProviderUnavailable(err, "load auth session")
	}
	return &sess, nil
}

// refresh renews an expired session once per key across concurrent callers.
// The store swap only succeeds if nobody else rotated the refresh token first.
func (c *IdentityClient) refresh(ctx context.Context, key string) (*domainauth.AuthSession, error) {
	v, err, _ := c.flights.Do(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.refreshOnce(fctx, key)
	})
	if err != nil {
		return nil, err
	}
	sess, _ := v.(*domainauth.AuthSession)
	return sess, nil
}

func (c *IdentityClient) refreshOnce(ctx context.Context, key string) (*domainauth.AuthSession, error) {
	// Another worker may already have rotated it.
	current, err := c.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if !current.Expired(c.clock.Now()) {
		return current, nil
	}
	if current.RefreshToken == "" {
		c.dropSession(ctx, key, "expired session without refresh token")
		return nil, nil
	}

	next, err := c.provider.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if apperrors.IsAuthenticationRequired(err) {
			c.dropSession(ctx, key, "refresh rejected")
			return nil, nil
		}
		return nil, mapDeadline(err)
	}
	next = withTokenExpiry(next)
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}

	swapped, err := c.sessions.CompareAndSwap(ctx, key, *current, next)
	if err != nil {
		return nil, apperrors.ProviderUnavailable(err, "store refreshed session")
	}
	if !swapped {
		c.logger.DebugContext(ctx, "refresh lost race, using stored session")
		return c.load(ctx, key)
	}
	return &next, nil
}

func (c *IdentityClient) dropSession(ctx context.Context, key, reason string) {
	c.logger.InfoContext(ctx, "dropping auth session", "reason", reason)
	if err := c.sessions.Delete(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "delete auth session failed", "error", err)
	}
}

// withTokenExpiry fills ExpiresAt from the access token's exp claim when the provider did not.
func withTokenExpiry(sess domainauth.AuthSession) domainauth.AuthSession {
	if !sess.ExpiresAt.IsZero() {
		return sess
	}
	if exp, ok := accessTokenExpiry(sess.AccessToken); ok {
		sess.ExpiresAt = exp
	}
	return sess
}

// accessTokenExpiry reads exp without verifying the signature; the provider
// remains the authority on whether the token is accepted.
func accessTokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func mapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && apperrors.GetCode(err) == "" {
		return apperrors.ProviderUnavailable(err, "identity provider timed out")
	}
	return err
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

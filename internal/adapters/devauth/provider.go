package devauth

// Package devauth provides a simple, config-driven IdentityProvider for local development.

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	apperrors "github.com/target/coursedesk/internal/errors"
	"github.com/target/coursedesk/internal/ports"
	"golang.org/x/crypto/argon2"
	"golang.org/x/oauth2"
)

// Argon2id parameters for the in-memory account table.
const (
	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 1
	argonKeyLen  = 32
	saltLen      = 16
)

// codeTTL bounds how long an authorization code stays redeemable.
const codeTTL = 10 * time.Minute

// accountNamespace derives stable account IDs from email addresses.
var accountNamespace = uuid.MustParse("6f1c4a52-3d7e-4b8a-9f0e-2a7c9d1b5e43")

// Config controls the dev auth provider behavior.
type Config struct {
	// Accounts are "email:password" pairs. At least one is required.
	Accounts []string
	// RedirectURL is the local OAuth callback. Defaults to /callback.
	RedirectURL string
	// TokenTTL is the access token lifetime. Defaults to 1h.
	TokenTTL time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

type account struct {
	identity domainauth.Identity
	salt     []byte
	hash     []byte
}

type accessGrant struct {
	accountEmail string
	expiresAt    time.Time
}

type pendingCode struct {
	accountEmail string
	challenge    string
	expiresAt    time.Time
}

// Provider implements ports.IdentityProvider for local development.
// Tokens are opaque random strings held in memory. The authorization URL
// points straight back to the local callback with a one-time code bound to
// the PKCE challenge. OAuth sign-in always resolves to the first account.
type Provider struct {
	accounts    map[string]account
	oauthEmail  string
	redirectURL string
	tokenTTL    time.Duration
	now         func() time.Time

	mu      sync.Mutex
	access  map[string]accessGrant
	refresh map[string]string // refresh token -> account email
	codes   map[string]pendingCode
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if len(cfg.Accounts) == 0 {
		return nil, errors.New("dev auth: at least one account is required")
	}
	p := &Provider{
		accounts:    make(map[string]account, len(cfg.Accounts)),
		redirectURL: cfg.RedirectURL,
		tokenTTL:    cfg.TokenTTL,
		now:         cfg.Now,
		access:      map[string]accessGrant{},
		refresh:     map[string]string{},
		codes:       map[string]pendingCode{},
	}
	if p.redirectURL == "" {
		p.redirectURL = "/callback"
	}
	if p.tokenTTL <= 0 {
		p.tokenTTL = time.Hour
	}
	if p.now == nil {
		p.now = time.Now
	}

	for i, pair := range cfg.Accounts {
		acct, err := parseAccount(pair)
		if err != nil {
			return nil, fmt.Errorf("dev auth: account %d: %w", i, err)
		}
		if i == 0 {
			p.oauthEmail = acct.identity.Email
		}
		p.accounts[acct.identity.Email] = acct
	}
	return p, nil
}

func parseAccount(pair string) (account, error) {
	email, password, ok := strings.Cut(strings.TrimSpace(pair), ":")
	email = strings.ToLower(strings.TrimSpace(email))
	if !ok || email == "" || password == "" {
		return account{}, errors.New("expected email:password")
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return account{}, fmt.Errorf("generate salt: %w", err)
	}
	local, _, _ := strings.Cut(email, "@")
	return account{
		identity: domainauth.Identity{
			ID:          uuid.NewSHA1(accountNamespace, []byte(email)).String(),
			Email:       email,
			DisplayName: local,
			Metadata:    map[string]any{"username": local, "provider": "dev"},
		},
		salt: salt,
		hash: hashPassword(password, salt),
	}, nil
}

func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func (p *Provider) PasswordSignIn(_ context.Context, email, password string) (domainauth.AuthSession, error) {
	acct, ok := p.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || password == "" {
		return domainauth.AuthSession{}, apperrors.InvalidCredentials("Invalid email or password")
	}
	if subtle.ConstantTimeCompare(hashPassword(password, acct.salt), acct.hash) != 1 {
		return domainauth.AuthSession{}, apperrors.InvalidCredentials("Invalid email or password")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issueLocked(acct.identity.Email)
}

// AuthCodeURL returns the local callback URL carrying a one-time code and the state.
func (p *Provider) AuthCodeURL(_ context.Context, in ports.AuthCodeURLInput) (string, error) {
	if in.State == "" {
		return "", errors.New("state is required")
	}
	if in.Verifier == "" {
		return "", errors.New("PKCE verifier is required")
	}

	code, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	now := p.now()
	p.mu.Lock()
	p.pruneCodesLocked(now)
	p.codes[code] = pendingCode{
		accountEmail: p.oauthEmail,
		challenge:    oauth2.S256ChallengeFromVerifier(in.Verifier),
		expiresAt:    now.Add(codeTTL),
	}
	p.mu.Unlock()

	target := p.redirectURL
	if in.RedirectURL != "" {
		target = in.RedirectURL
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse redirect URL: %w", err)
	}
	q := u.Query()
	q.Set("code", code)
	q.Set("state", in.State)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// pruneCodesLocked drops codes abandoned past their expiry.
func (p *Provider) pruneCodesLocked(now time.Time) {
	for code, pc := range p.codes {
		if now.After(pc.expiresAt) {
			delete(p.codes, code)
		}
	}
}

// Exchange consumes a one-time code after verifying the PKCE challenge.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.AuthSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pc, ok := p.codes[in.Code]
	if !ok {
		return domainauth.AuthSession{}, exchangeFailed("unknown authorization code")
	}
	delete(p.codes, in.Code)

	if p.now().After(pc.expiresAt) {
		return domainauth.AuthSession{}, exchangeFailed("authorization code expired")
	}
	got := oauth2.S256ChallengeFromVerifier(in.Verifier)
	if in.Verifier == "" || subtle.ConstantTimeCompare([]byte(got), []byte(pc.challenge)) != 1 {
		return domainauth.AuthSession{}, exchangeFailed("PKCE verification failed")
	}
	return p.issueLocked(pc.accountEmail)
}

// Refresh rotates the refresh token and issues a new access token.
func (p *Provider) Refresh(_ context.Context, refreshToken string) (domainauth.AuthSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.refresh[refreshToken]
	if !ok || refreshToken == "" {
		return domainauth.AuthSession{}, apperrors.AuthenticationRequired("Session refresh rejected")
	}
	delete(p.refresh, refreshToken)
	return p.issueLocked(email)
}

func (p *Provider) UserInfo(_ context.Context, accessToken string) (domainauth.Identity, error) {
	p.mu.Lock()
	grant, ok := p.access[accessToken]
	p.mu.Unlock()

	if !ok || !p.now().Before(grant.expiresAt) {
		return domainauth.Identity{}, apperrors.AuthenticationRequired("access token rejected")
	}
	return p.accounts[grant.accountEmail].identity, nil
}

// Revoke invalidates an access or refresh token. Unknown tokens are ignored.
func (p *Provider) Revoke(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.access, token)
	delete(p.refresh, token)
	return nil
}

func (p *Provider) issueLocked(email string) (domainauth.AuthSession, error) {
	at, err := randomToken()
	if err != nil {
		return domainauth.AuthSession{}, fmt.Errorf("generate access token: %w", err)
	}
	rt, err := randomToken()
	if err != nil {
		return domainauth.AuthSession{}, fmt.Errorf("generate refresh token: %w", err)
	}

	exp := p.now().Add(p.tokenTTL)
	p.access[at] = accessGrant{accountEmail: email, expiresAt: exp}
	p.refresh[rt] = email
	return domainauth.AuthSession{AccessToken: at, RefreshToken: rt, ExpiresAt: exp}, nil
}

func exchangeFailed(msg string) error {
	return apperrors.Wrap(errors.New(msg), apperrors.ErrCodeOAuthExchangeFailed, "OAuth code exchange failed")
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

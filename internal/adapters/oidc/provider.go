// Package oidc provides the OpenID Connect identity provider adapter.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	apperrors "github.com/target/coursedesk/internal/errors"
	"github.com/target/coursedesk/internal/ports"
	"golang.org/x/oauth2"
)

// providerHintParam carries the upstream social provider name on the authorization URL.
const providerHintParam = "identity_provider"

// Provider implements ports.IdentityProvider using OIDC discovery and OAuth2 grants.
type Provider struct {
	config        *oauth2.Config
	httpClient    *http.Client
	oidcProvider  *gooidc.Provider
	revocationURL string
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string // the IdP API key; also sent as the apikey header
	RedirectURL  string
	Scopes       []string
	HTTPClient   *http.Client // Optional, defaults to a client with a 30s timeout
}

// discoveryExtras are discovery fields go-oidc does not expose directly.
type discoveryExtras struct {
	RevocationEndpoint string `json:"revocation_endpoint"`
}

// NewProvider runs OIDC discovery against IssuerURL and returns a ready provider.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	base := config.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	httpClient := withAPIKey(base, config.ClientSecret)

	issuer := strings.TrimSuffix(config.IssuerURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, httpClient), issuer)
	if err != nil {
		return nil, apperrors.ProviderUnavailable(err, "oidc discovery failed")
	}

	var extras discoveryExtras
	if claimsErr := op.Claims(&extras); claimsErr != nil {
		return nil, fmt.Errorf("decode discovery document: %w", claimsErr)
	}

	endpoint := op.Endpoint()
	endpoint.AuthStyle = oauth2.AuthStyleInHeader

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       config.Scopes,
			Endpoint:     endpoint,
		},
		httpClient:    httpClient,
		oidcProvider:  op,
		revocationURL: extras.RevocationEndpoint,
	}, nil
}

func (p *Provider) PasswordSignIn(ctx context.Context, email, password string) (domainauth.AuthSession, error) {
	if email == "" || password == "" {
		return domainauth.AuthSession{}, apperrors.InvalidCredentials("Email and password are required")
	}

	tok, err := p.config.PasswordCredentialsToken(p.clientCtx(ctx), email, password)
	if err != nil {
		return domainauth.AuthSession{}, classifyTokenError(err, apperrors.ErrCodeInvalidCredentials, "Invalid email or password")
	}
	return toAuthSession(tok), nil
}

func (p *Provider) AuthCodeURL(_ context.Context, in ports.AuthCodeURLInput) (string, error) {
	if in.State == "" {
		return "", errors.New("state is required")
	}
	if in.Verifier == "" {
		return "", errors.New("PKCE verifier is required")
	}

	opts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(in.Verifier)}
	if in.RedirectURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", in.RedirectURL))
	}
	if in.Provider != "" {
		opts = append(opts, oauth2.SetAuthURLParam(providerHintParam, in.Provider))
	}
	return p.config.AuthCodeURL(in.State, opts...), nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.AuthSession, error) {
	if in.Code == "" {
		return domainauth.AuthSession{}, apperrors.Wrap(
			errors.New("authorization code is required"),
			apperrors.ErrCodeOAuthExchangeFailed, "OAuth code exchange failed")
	}

	opts := []oauth2.AuthCodeOption{oauth2.VerifierOption(in.Verifier)}
	if in.RedirectURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", in.RedirectURL))
	}

	tok, err := p.config.Exchange(p.clientCtx(ctx), in.Code, opts...)
	if err != nil {
		return domainauth.AuthSession{}, classifyTokenError(err, apperrors.ErrCodeOAuthExchangeFailed, "OAuth code exchange failed")
	}
	return toAuthSession(tok), nil
}

func (p *Provider) Refresh(ctx context.Context, refreshToken string) (domainauth.AuthSession, error) {
	if refreshToken == "" {
		return domainauth.AuthSession{}, apperrors.AuthenticationRequired("refresh token is required")
	}

	// An access-token-less token is never valid, so the source always refreshes
	ts := p.config.TokenSource(p.clientCtx(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return domainauth.AuthSession{}, classifyTokenError(err, apperrors.ErrCodeAuthenticationRequired, "Session refresh rejected")
	}
	return toAuthSession(tok), nil
}

// userInfoClaims is the subset of userinfo claims mapped into an Identity.
type userInfoClaims struct {
	Sub               string         `json:"sub"`
	Email             string         `json:"email"`
	PreferredUsername string         `json:"preferred_username"`
	Name              string         `json:"name"`
	UserMetadata      map[string]any `json:"user_metadata"`
}

func (p *Provider) UserInfo(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	if accessToken == "" {
		return domainauth.Identity{}, apperrors.AuthenticationRequired("access token is required")
	}

	ui, err := p.oidcProvider.UserInfo(p.clientCtx(ctx), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	if err != nil {
		// go-oidc reports non-200 responses as "<status>: <body>"
		if strings.HasPrefix(err.Error(), "401") || strings.HasPrefix(err.Error(), "403") {
			return domainauth.Identity{}, apperrors.Wrap(redactErr(err), apperrors.ErrCodeAuthenticationRequired, "access token rejected")
		}
		return domainauth.Identity{}, apperrors.ProviderUnavailable(redactErr(err), "fetch user info")
	}

	var claims userInfoClaims
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return domainauth.Identity{}, fmt.Errorf("decode user info: %w", claimsErr)
	}
	return mapUserInfo(ui.Subject, ui.Email, claims), nil
}

func (p *Provider) Revoke(ctx context.Context, token string) error {
	if p.revocationURL == "" || token == "" {
		return nil
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(url.QueryEscape(p.config.ClientID), url.QueryEscape(p.config.ClientSecret))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.ProviderUnavailable(err, "token revocation failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= http.StatusMultipleChoices {
		return apperrors.ProviderUnavailable(
			fmt.Errorf("revocation endpoint returned %s", resp.Status), "token revocation failed")
	}
	return nil
}

func (p *Provider) clientCtx(ctx context.Context) context.Context {
	return gooidc.ClientContext(ctx, p.httpClient)
}

func mapUserInfo(subject, email string, c userInfoClaims) domainauth.Identity {
	metadata := c.UserMetadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metaUsername, _ := metadata["username"].(string)

	return domainauth.Identity{
		ID:          firstNonEmpty(subject, c.Sub),
		Email:       firstNonEmpty(email, c.Email),
		DisplayName: firstNonEmpty(c.PreferredUsername, metaUsername, c.Name),
		Metadata:    metadata,
	}
}

func toAuthSession(tok *oauth2.Token) domainauth.AuthSession {
	return domainauth.AuthSession{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
}

// classifyTokenError maps token endpoint failures: 4xx responses become code,
// everything else (transport, timeouts, 5xx) is ProviderUnavailable.
func classifyTokenError(err error, code apperrors.ErrorCode, message string) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		if status >= http.StatusInternalServerError {
			return apperrors.ProviderUnavailable(redactErr(err), "identity provider error")
		}
		return apperrors.Wrap(redactErr(err), code, message)
	}
	return apperrors.ProviderUnavailable(redactErr(err), "identity provider unavailable")
}

func redactErr(err error) error {
	return errors.New(apperrors.Redact(err.Error()))
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// apiKeyTransport adds the apikey header expected by the identity provider gateway.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r2 := r.Clone(r.Context())
	r2.Header.Set("apikey", t.key)
	return t.base.RoundTrip(r2)
}

func withAPIKey(c *http.Client, key string) *http.Client {
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	out := *c
	out.Transport = &apiKeyTransport{key: key, base: base}
	return &out
}

package service

import (
	"context"
	"log/slog"
	"time"

	domainauth "github.com/target/coursedesk/internal/domain/auth"
)

// sessionIdentities is the part of IdentityClient the resolver depends on.
type sessionIdentities interface {
	CurrentSession(ctx context.Context, key string) (*domainauth.AuthSession, error)
	IdentityFor(ctx context.Context, sess domainauth.AuthSession) (*domainauth.Identity, error)
}

// AuthResolverOptions groups dependencies for AuthResolver.
type AuthResolverOptions struct {
	Identities sessionIdentities
	Timeout    time.Duration // default DefaultCallTimeout
	Logger     *slog.Logger
}

// AuthResolver turns a server session key into the identity making the request.
// It never fails: every error is logged and resolves to no identity.
type AuthResolver struct {
	identities sessionIdentities
	timeout    time.Duration
	logger     *slog.Logger
}

// NewAuthResolver constructs a new AuthResolver.
func NewAuthResolver(opts AuthResolverOptions) *AuthResolver {
	if opts.Identities == nil {
		panic("identity client is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthResolver{
		identities: opts.Identities,
		timeout:    timeout,
		logger:     logger.With("component", "auth_resolver"),
	}
}

// Resolve returns the identity for key, or nil when the request is anonymous.
func (r *AuthResolver) Resolve(ctx context.Context, key string) *domainauth.Identity {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sess, err := r.identities.CurrentSession(ctx, key)
	if err != nil {
		r.logger.WarnContext(ctx, "session resolution failed", "error", err)
		return nil
	}
	if sess == nil {
		r.logger.DebugContext(ctx, "no current session")
		return nil
	}

	id, err := r.identities.IdentityFor(ctx, *sess)
	if err != nil {
		r.logger.WarnContext(ctx, "identity resolution failed", "error", err)
		return nil
	}
	return id
}

package bootstrap

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/target/coursedesk/config"
	"github.com/target/coursedesk/internal/data"
	httpx "github.com/target/coursedesk/internal/http"
	"github.com/target/coursedesk/internal/ports"
	"github.com/target/coursedesk/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Identity *service.IdentityClient
	Resolver *service.AuthResolver
	Courses  *service.CourseService
	Tasks    *service.TaskService
	Ready    map[string]httpx.Pinger
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config   *config.AppConfig
	Adapters ServiceAdapters
	Logger   *slog.Logger
}

// ServiceAdapters groups the adapters backing service ports.
type ServiceAdapters struct {
	Provider ports.IdentityProvider
	Sessions ports.SessionStore
	Pool     data.PgxPool
}

// NewServices wires the identity client, the request resolver and the resource services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service config is required")
	}
	a := deps.Adapters
	if a.Provider == nil || a.Sessions == nil || a.Pool == nil {
		return ServiceContainer{}, errors.New("identity provider, session store and database pool are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.Config.Auth.CallTimeout

	identity := service.NewIdentityClient(service.IdentityClientOptions{
		Provider: a.Provider,
		Sessions: a.Sessions,
		Config:   service.IdentityClientConfig{Timeout: timeout, Logger: logger},
	})
	resolver := service.NewAuthResolver(service.AuthResolverOptions{
		Identities: identity,
		Timeout:    timeout,
		Logger:     logger,
	})

	store := data.NewPgStore(a.Pool, data.PgStoreOptions{Logger: logger})
	resources := service.ResourceServiceOptions{Store: store, Timeout: timeout, Logger: logger}

	return ServiceContainer{
		Identity: identity,
		Resolver: resolver,
		Courses:  service.NewCourseService(resources),
		Tasks:    service.NewTaskService(resources),
		Ready: map[string]httpx.Pinger{
			"database":      store,
			"session_store": a.Sessions,
		},
	}, nil
}

// HandlerConfig contains dependencies for the HTTP handler.
type HandlerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler builds the session manager and the router over services.
func BuildHTTPHandler(cfg HandlerConfig) http.Handler {
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	sessions := httpx.NewSessionManager(httpx.SessionManagerOptions{
		Secret: []byte(appCfg.Session.Secret),
		Name:   appCfg.Session.CookieName,
		Cookie: httpx.CookieConfig{
			Domain: appCfg.HTTP.CookieDomain,
			MaxAge: appCfg.Auth.SessionMaxAge,
		},
	})

	return httpx.NewRouter(httpx.RouterOptions{
		Services: httpx.RouterServices{
			Identity: cfg.Services.Identity,
			Resolver: cfg.Services.Resolver,
			Courses:  cfg.Services.Courses,
			Tasks:    cfg.Services.Tasks,
			Ready:    cfg.Services.Ready,
		},
		Sessions:     sessions,
		MaxBodyBytes: appCfg.HTTP.MaxBodyBytes,
		Logger:       cfg.Logger,
	})
}

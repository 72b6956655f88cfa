package httpx

import (
	"log/slog"
	"net/http"
)

// DefaultMaxBodyBytes caps JSON request bodies when RouterOptions.MaxBodyBytes is unset.
const DefaultMaxBodyBytes = 1 << 20

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Identity IdentityService
	Resolver IdentityResolver
	Courses  CourseService
	Tasks    TaskService
	// Readiness dependencies by name (e.g. "database", "session_store").
	Ready map[string]Pinger
}

// RouterOptions groups the HTTP router configuration.
type RouterOptions struct {
	Services     RouterServices
	Sessions     *SessionManager
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP handler: Recover → Logging → body limit → routes.
func NewRouter(opts RouterOptions) http.Handler {
	if opts.Sessions == nil {
		panic("session manager is required")
	}
	if opts.Services.Resolver == nil || opts.Services.Identity == nil {
		panic("identity service and resolver are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()
	svc := opts.Services

	authHandlers := &AuthHandlers{Svc: svc.Identity, Sessions: opts.Sessions, Logger: logger}
	registerAuthRoutes(mux, authHandlers, OptionalAuth(opts.Sessions, svc.Resolver))

	guard := RequireAuth(opts.Sessions, svc.Resolver)
	if svc.Courses != nil {
		registerCourseRoutes(mux, &CourseHandlers{Svc: svc.Courses, Logger: logger}, guard)
	}
	if svc.Tasks != nil {
		registerTaskRoutes(mux, &TaskHandlers{Svc: svc.Tasks, Logger: logger}, guard)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(svc.Ready, logger))

	var handler http.Handler = mux
	handler = BodyLimit(maxBody)(handler)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, optional func(http.Handler) http.Handler) {
	mux.Handle("GET /api/auth/status", optional(http.HandlerFunc(h.Status)))
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /signin/{provider}", h.SignIn)
	mux.HandleFunc("GET /callback", h.Callback)
}

func registerCourseRoutes(mux *http.ServeMux, h *CourseHandlers, guard func(http.Handler) http.Handler) {
	mux.Handle("GET /api/courses", guard(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/courses", guard(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /api/courses/{id}", guard(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/courses/{id}", guard(http.HandlerFunc(h.Delete)))
}

func registerTaskRoutes(mux *http.ServeMux, h *TaskHandlers, guard func(http.Handler) http.Handler) {
	mux.Handle("GET /api/tasks", guard(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/tasks", guard(http.HandlerFunc(h.Create)))
	mux.Handle("PUT /api/tasks/{id}", guard(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/tasks/{id}", guard(http.HandlerFunc(h.Delete)))
}

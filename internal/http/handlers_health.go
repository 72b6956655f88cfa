package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthResponse = `{"status":"ok"}`

const readinessTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// readyHandler pings every named dependency concurrently and answers 503 when any fails.
func readyHandler(deps map[string]Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var (
			mu      sync.Mutex
			g       errgroup.Group
			checks  = make(map[string]string, len(deps))
			healthy = true
		)
		for name, dep := range deps {
			g.Go(func() error {
				err := dep.Ping(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
					checks[name] = "unavailable"
					healthy = false
					return nil
				}
				checks[name] = "ok"
				return nil
			})
		}
		_ = g.Wait()

		if !healthy {
			WriteJSON(w, http.StatusServiceUnavailable, Envelope{"status": statusError, "checks": checks})
			return
		}
		WriteJSON(w, http.StatusOK, Envelope{"status": "ok", "checks": checks})
	}
}

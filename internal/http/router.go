// Package httpapi assembles the service's HTTP surface: the admin API, the
// health and metrics endpoints, and the gated reverse proxy that fronts the
// web application.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	stdhttputil "net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"careergate/internal/admin/guard"
	"careergate/internal/admin/handler"
	"careergate/internal/gate"
	"careergate/pkg/platform/httputil"
	"careergate/pkg/platform/middleware/metadata"
	"careergate/pkg/platform/middleware/request"
	"careergate/pkg/platform/middleware/requesttime"
)

// HealthChecker probes one dependency. Nil-error means healthy.
type HealthChecker func(ctx context.Context) error

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Gate     *gate.Middleware
	Guard    *guard.Guard
	Admin    *handler.Handler
	Upstream *url.URL
	// Health maps a dependency name to its probe. Empty is fine; the
	// health endpoint then only reports the process as up.
	Health map[string]HealthChecker
}

// New builds the service router. Page navigations flow through the gate into
// the reverse proxy; /api/admin carries its own fail-closed guard.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", healthHandler(deps.Logger, deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/admin", func(r chi.Router) {
		// Verification runs before the caller has proven the admin role,
		// so it stays outside the guard.
		r.Post("/login/verify", deps.Admin.HandleVerifyLogin)

		r.Group(func(r chi.Router) {
			r.Use(deps.Guard.Middleware)
			deps.Admin.Register(r)
		})
	})

	r.Handle("/*", deps.Gate.Handler(newProxy(deps.Upstream, deps.Logger)))
	return r
}

func newProxy(upstream *url.URL, logger *slog.Logger) http.Handler {
	proxy := stdhttputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.ErrorContext(r.Context(), "upstream proxy error",
			"error", err,
			"path", r.URL.Path,
		)
		w.WriteHeader(http.StatusBadGateway)
	}
	return proxy
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(logger *slog.Logger, checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checkers))}
		status := http.StatusOK
		for name, check := range checkers {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"check", name,
					"error", err,
				)
				resp.Checks[name] = "unhealthy"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}

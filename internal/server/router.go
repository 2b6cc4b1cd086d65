// Package server assembles the HTTP router: routes, middleware, and the
// health/metrics endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "user-management-backend/internal/auth/handler"
	"user-management-backend/internal/metrics"
	rolehandler "user-management-backend/internal/role/handler"
	"user-management-backend/internal/security"
	"user-management-backend/internal/server/httpx"
	"user-management-backend/internal/server/middleware"
	userhandler "user-management-backend/internal/user/handler"
)

// Pinger is the readiness dependency, satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds everything the router needs.
type Deps struct {
	Auth  *authhandler.Handler
	Users *userhandler.Handler
	Roles *rolehandler.Handler

	Tokens      *security.TokenProvider
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics

	// Registry backs GET /metrics. If nil, the endpoint is not mounted.
	Registry *prometheus.Registry
	// DB backs GET /readyz. If nil, readiness skips the ping.
	DB Pinger

	AllowedOrigins []string
}

// NewRouter builds the chi router.
//
// Route → handler mapping:
//   - POST /auth/token, /auth/refresh        → internal/auth/handler (rate-limited)
//   - GET/DELETE /me/sessions{,/{id}}        → internal/auth/handler (bearer)
//   - POST /users                            → internal/user/handler (open)
//   - GET /users, /users/{id}, /me (+PUT/DELETE) → internal/user/handler (bearer)
//   - /roles...                              → internal/role/handler (bearer + manage_roles)
//   - /healthz, /readyz, /metrics            → this package
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.PingContext(ctx); err != nil {
				httpx.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Credential endpoints: public, per-IP rate limited.
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}
		r.Post("/auth/token", deps.Auth.Login)
		r.Post("/auth/refresh", deps.Auth.Refresh)
	})

	r.Post("/users", deps.Users.Register)

	// Everything below requires a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Tokens))

		r.Get("/me", deps.Users.Me)
		r.Put("/me", deps.Users.UpdateMe)
		r.Delete("/me", deps.Users.DeleteMe)

		r.Get("/me/sessions", deps.Auth.Sessions)
		r.Delete("/me/sessions", deps.Auth.RevokeAllSessions)
		r.Delete("/me/sessions/{id}", deps.Auth.RevokeSession)

		r.Get("/users", deps.Users.List)
		r.Get("/users/{id}", deps.Users.Get)

		r.Get("/roles", deps.Roles.List)
		r.Get("/roles/permissions", deps.Roles.ListPermissions)
		r.Get("/roles/{id}", deps.Roles.Get)
		r.Post("/roles", deps.Roles.Create)
		r.Put("/roles/{id}", deps.Roles.Update)
		r.Delete("/roles/{id}", deps.Roles.Delete)
		r.Post("/roles/assign", deps.Roles.Assign)
	})

	return r
}

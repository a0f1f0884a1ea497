package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "taskboard/internal/auth/handler"
	audithandler "taskboard/internal/audit/handler"
	dashboardhandler "taskboard/internal/dashboard/handler"
	"taskboard/internal/platform/middleware"
	projecthandler "taskboard/internal/project/handler"
	taskhandler "taskboard/internal/task/handler"
	tenanthandler "taskboard/internal/tenant/handler"
	userhandler "taskboard/internal/user/handler"
	"taskboard/pkg/platform/httputil"
	"taskboard/pkg/requestcontext"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *authhandler.Handler
	Tenant    *tenanthandler.Handler
	User      *userhandler.Handler
	Project   *projecthandler.Handler
	Task      *taskhandler.Handler
	Audit     *audithandler.Handler
	Dashboard *dashboardhandler.Handler
}

// NewRouter assembles the full route tree under /api.
//
// Middleware order is load-bearing: request metadata first, then token
// verification, then tenant scoping, then per-route role checks. Everything
// past RequireTenant can assume an effective tenant scope in the context.
func NewRouter(handlers Handlers, verifier middleware.TokenVerifier, db *sql.DB, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMeta)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler(db))
		r.Handle("/metrics", promhttp.Handler())

		handlers.Auth.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(verifier, logger))

			handlers.Auth.RegisterAuthenticated(r)

			// Cross-tenant admin surface, super_admin only.
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(requestcontext.RoleSuperAdmin))
				handlers.Tenant.Register(r)
			})

			// Tenant-scoped resources.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireTenant(logger))

				handlers.Project.Register(r)
				handlers.Task.Register(r)
				handlers.Dashboard.Register(r)
				handlers.User.Register(r)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAnyRole(requestcontext.RoleTenantAdmin, requestcontext.RoleSuperAdmin))
					handlers.Audit.Register(r)
				})
			})
		})
	})

	return r
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, map[string]string{"status": status})
	}
}

package middleware

import (
	"log/slog"
	"net/http"

	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/httputil"
	"taskboard/pkg/requestcontext"
)

// RequireTenant resolves the effective tenant scope for the request. This is
// the single chokepoint that keeps non-super-admin requests from operating
// without a bound tenant: downstream queries filter by the scope set here,
// never by a client-supplied tenant identifier.
func RequireTenant(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, ok := requestcontext.Identity(ctx)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authorization token missing"))
				return
			}

			if claims.Role == requestcontext.RoleSuperAdmin {
				scope := requestcontext.TenantScope{Unscoped: true}
				next.ServeHTTP(w, r.WithContext(requestcontext.WithScope(ctx, scope)))
				return
			}

			if claims.TenantID == nil {
				logger.WarnContext(ctx, "tenant context missing",
					"user_id", claims.UserID,
					"role", claims.Role,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "tenant context missing"))
				return
			}

			scope := requestcontext.TenantScope{TenantID: *claims.TenantID}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithScope(ctx, scope)))
		})
	}
}

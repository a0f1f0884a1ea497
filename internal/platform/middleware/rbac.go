package middleware

import (
	"net/http"

	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/httputil"
	"taskboard/pkg/requestcontext"
)

// RequireRole passes only callers whose token carries exactly the expected
// role.
func RequireRole(expected requestcontext.Role) func(http.Handler) http.Handler {
	return RequireAnyRole(expected)
}

// RequireAnyRole passes callers whose role is in the expected set.
func RequireAnyRole(expected ...requestcontext.Role) func(http.Handler) http.Handler {
	allowed := make(map[requestcontext.Role]struct{}, len(expected))
	for _, role := range expected {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := requestcontext.Identity(r.Context())
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authorization token missing"))
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

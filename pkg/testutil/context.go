package testutil

import (
	"net/http"

	"github.com/google/uuid"

	"taskboard/pkg/requestcontext"
)

// WithIdentity attaches verified claims to the request, simulating what the
// auth middleware does after token verification.
func WithIdentity(req *http.Request, claims requestcontext.Claims) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), claims))
}

// WithScope attaches an effective tenant scope to the request, simulating
// the tenant-scoping middleware.
func WithScope(req *http.Request, scope requestcontext.TenantScope) *http.Request {
	return req.WithContext(requestcontext.WithScope(req.Context(), scope))
}

// AsTenantUser attaches claims and scope for a regular member of tenantID.
func AsTenantUser(req *http.Request, userID, tenantID uuid.UUID, role requestcontext.Role) *http.Request {
	req = WithIdentity(req, requestcontext.Claims{UserID: userID, TenantID: &tenantID, Role: role})
	return WithScope(req, requestcontext.TenantScope{TenantID: tenantID})
}

// AsSuperAdmin attaches claims and an unscoped tenant scope.
func AsSuperAdmin(req *http.Request, userID uuid.UUID) *http.Request {
	req = WithIdentity(req, requestcontext.Claims{UserID: userID, Role: requestcontext.RoleSuperAdmin})
	return WithScope(req, requestcontext.TenantScope{Unscoped: true})
}

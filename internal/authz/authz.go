// Package authz holds the stateless access-control predicates shared by the
// resource services. Checks are evaluated per request in a fixed order:
// authenticate, scope tenant, then role/ownership; the first violation
// short-circuits the rest.
package authz

import (
	"github.com/google/uuid"

	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
)

// CheckTenant denies access to a resource whose tenant does not match the
// effective scope. The check is independent of role; only the Unscoped
// capability (set once for super_admin by the scoping middleware) bypasses
// it, so a client-supplied tenant identifier can never widen access.
func CheckTenant(scope requestcontext.TenantScope, resourceTenantID uuid.UUID) error {
	if scope.Unscoped {
		return nil
	}
	if resourceTenantID != scope.TenantID {
		return dErrors.New(dErrors.CodeForbidden, "cross-tenant access forbidden")
	}
	return nil
}

// CanMutate decides ownership-based mutation rights within a tenant:
// a tenant_admin may act on any resource in their tenant, a plain user only
// on resources they created. Call CheckTenant first; this predicate assumes
// the resource is already known to be in scope.
func CanMutate(claims requestcontext.Claims, creatorID uuid.UUID) error {
	switch claims.Role {
	case requestcontext.RoleSuperAdmin, requestcontext.RoleTenantAdmin:
		return nil
	case requestcontext.RoleUser:
		if claims.UserID == creatorID {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeForbidden, "insufficient permissions")
}

// RequireRole passes iff the caller holds exactly the expected role.
func RequireRole(claims requestcontext.Claims, expected requestcontext.Role) error {
	if claims.Role != expected {
		return dErrors.New(dErrors.CodeForbidden, "insufficient permissions")
	}
	return nil
}

// RequireAnyRole passes iff the caller's role is in the expected set.
func RequireAnyRole(claims requestcontext.Claims, expected ...requestcontext.Role) error {
	for _, role := range expected {
		if claims.Role == role {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeForbidden, "insufficient permissions")
}

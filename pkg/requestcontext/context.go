// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by middleware and consumed by services. Keeping this package
// free of net/http dependencies lets services import only what they need
// without pulling in HTTP-related code.
//
// Usage in services (read values):
//
//	claims, ok := requestcontext.Identity(ctx)
//	scope, ok := requestcontext.Scope(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithIdentity(ctx, claims)
//	ctx = requestcontext.WithScope(ctx, scope)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithClientIP(ctx, "203.0.113.7")
package requestcontext

import (
	"context"

	"github.com/google/uuid"
)

// Role is the set of roles a token can carry.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleUser        Role = "user"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTenantAdmin, RoleUser:
		return true
	}
	return false
}

// Claims is the verified identity of the caller, decoded from the bearer
// token. TenantID is nil exactly for super_admin tokens.
type Claims struct {
	UserID   uuid.UUID
	TenantID *uuid.UUID
	Role     Role
}

// TenantScope is the effective tenant scope of a request, resolved once by
// the tenant-scoping middleware. Unscoped is true only for super_admin;
// every ad-hoc super_admin bypass downstream must check this flag instead of
// re-deriving it from the role.
type TenantScope struct {
	TenantID uuid.UUID
	Unscoped bool
}

// Context key types (unexported for encapsulation).
type (
	identityKey  struct{}
	scopeKey     struct{}
	requestIDKey struct{}
	clientIPKey  struct{}
)

// Identity retrieves the verified claims from the context.
func Identity(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(identityKey{}).(Claims)
	return claims, ok
}

// WithIdentity injects verified claims into the context.
func WithIdentity(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, identityKey{}, claims)
}

// Scope retrieves the effective tenant scope from the context.
func Scope(ctx context.Context) (TenantScope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(TenantScope)
	return scope, ok
}

// WithScope injects the effective tenant scope into the context.
func WithScope(ctx context.Context, scope TenantScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP injects the client IP address into a context.
// Useful for service unit tests that don't run the full middleware chain.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
)

func TestCheckTenant(t *testing.T) {
	tenantID := uuid.New()
	scope := requestcontext.TenantScope{TenantID: tenantID}

	t.Run("matching tenant passes", func(t *testing.T) {
		assert.NoError(t, CheckTenant(scope, tenantID))
	})

	t.Run("foreign tenant is forbidden regardless of role", func(t *testing.T) {
		err := CheckTenant(scope, uuid.New())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("unscoped bypasses the check", func(t *testing.T) {
		unscoped := requestcontext.TenantScope{Unscoped: true}
		assert.NoError(t, CheckTenant(unscoped, uuid.New()))
	})
}

func TestCanMutate(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	t.Run("tenant_admin may act on any in-tenant resource", func(t *testing.T) {
		claims := requestcontext.Claims{UserID: other, Role: requestcontext.RoleTenantAdmin}
		assert.NoError(t, CanMutate(claims, owner))
	})

	t.Run("user may act on their own resource", func(t *testing.T) {
		claims := requestcontext.Claims{UserID: owner, Role: requestcontext.RoleUser}
		assert.NoError(t, CanMutate(claims, owner))
	})

	t.Run("user may not act on another user's resource", func(t *testing.T) {
		claims := requestcontext.Claims{UserID: other, Role: requestcontext.RoleUser}
		err := CanMutate(claims, owner)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestRequireRole(t *testing.T) {
	claims := requestcontext.Claims{UserID: uuid.New(), Role: requestcontext.RoleUser}

	assert.NoError(t, RequireRole(claims, requestcontext.RoleUser))
	assert.Error(t, RequireRole(claims, requestcontext.RoleTenantAdmin))
	assert.NoError(t, RequireAnyRole(claims, requestcontext.RoleTenantAdmin, requestcontext.RoleUser))
	assert.Error(t, RequireAnyRole(claims, requestcontext.RoleTenantAdmin, requestcontext.RoleSuperAdmin))
}

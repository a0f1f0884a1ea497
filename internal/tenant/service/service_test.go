package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/audit"
	auditmemory "taskboard/internal/audit/store/memory"
	"taskboard/internal/audit/publisher"
	"taskboard/internal/tenant/models"
	tenantmemory "taskboard/internal/tenant/store/memory"
	usermemory "taskboard/internal/user/store/memory"
	usermodels "taskboard/internal/user/models"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
)

type fixture struct {
	tenants *tenantmemory.InMemoryStore
	audits  *auditmemory.InMemoryStore
	service *Service

	tenantID uuid.UUID
	adminID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tenants := tenantmemory.NewInMemoryStore()
	users := usermemory.NewInMemoryStore()
	audits := auditmemory.NewInMemoryStore()

	f := &fixture{
		tenants:  tenants,
		audits:   audits,
		service:  NewService(tenants, users, publisher.NewPublisher(audits)),
		tenantID: uuid.New(),
		adminID:  uuid.New(),
	}

	tenants.Put(models.Tenant{
		ID:               f.tenantID,
		Name:             "Acme",
		Subdomain:        "acme",
		Status:           models.StatusActive,
		SubscriptionPlan: "free",
		MaxUsers:         5,
		MaxProjects:      3,
		CreatedAt:        time.Now().Add(-time.Hour),
	})
	tenants.Put(models.Tenant{
		ID:        uuid.New(),
		Name:      "Globex",
		Subdomain: "globex",
		Status:    models.StatusSuspended,
		CreatedAt: time.Now(),
	})

	memberTenant := f.tenantID
	users.Put(usermodels.User{
		ID: uuid.New(), TenantID: &memberTenant,
		Email: "a@acme.io", FullName: "A", Role: requestcontext.RoleUser,
	})
	users.Put(usermodels.User{
		ID: uuid.New(), Email: "root@platform.io", FullName: "Root",
		Role: requestcontext.RoleSuperAdmin,
	})
	return f
}

func (f *fixture) superAdminCtx() context.Context {
	return requestcontext.WithIdentity(context.Background(), requestcontext.Claims{
		UserID: f.adminID,
		Role:   requestcontext.RoleSuperAdmin,
	})
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	stats, err := f.service.Stats(f.superAdminCtx())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTenants)
	assert.Equal(t, 1, stats.ActiveTenants)
	assert.Equal(t, 1, stats.SuspendedTenants)
	assert.Equal(t, 1, stats.TotalUsers, "super_admin accounts are not counted")
}

func TestList_NewestFirst(t *testing.T) {
	f := newFixture(t)

	overviews, err := f.service.List(f.superAdminCtx())
	require.NoError(t, err)
	require.Len(t, overviews, 2)
	assert.Equal(t, "Globex", overviews[0].Name)
}

func TestUpdate_SuspendIsAudited(t *testing.T) {
	f := newFixture(t)

	status := models.StatusSuspended
	tenant, err := f.service.Update(f.superAdminCtx(), f.tenantID, models.UpdateRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, tenant.Status)

	events, err := f.audits.List(context.Background(), audit.ListFilter{Action: audit.ActionUpdateTenant})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, f.tenantID.String(), events[0].EntityID)
	assert.Nil(t, events[0].TenantID, "super_admin actions carry no tenant")
}

func TestUpdate_PartialLimits(t *testing.T) {
	f := newFixture(t)

	maxUsers := 50
	tenant, err := f.service.Update(f.superAdminCtx(), f.tenantID, models.UpdateRequest{MaxUsers: &maxUsers})
	require.NoError(t, err)
	assert.Equal(t, 50, tenant.MaxUsers)
	assert.Equal(t, 3, tenant.MaxProjects, "untouched fields keep their value")
	assert.Equal(t, "free", tenant.SubscriptionPlan)
}

func TestUpdate_ValidationFailures(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Update(f.superAdminCtx(), f.tenantID, models.UpdateRequest{})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))

	bad := models.Status("deleted")
	_, err = f.service.Update(f.superAdminCtx(), f.tenantID, models.UpdateRequest{Status: &bad})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))

	zero := 0
	_, err = f.service.Update(f.superAdminCtx(), f.tenantID, models.UpdateRequest{MaxUsers: &zero})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
}

func TestUpdate_UnknownTenant(t *testing.T) {
	f := newFixture(t)

	status := models.StatusActive
	_, err := f.service.Update(f.superAdminCtx(), uuid.New(), models.UpdateRequest{Status: &status})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

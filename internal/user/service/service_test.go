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
	tenantmodels "taskboard/internal/tenant/models"
	tenantmemory "taskboard/internal/tenant/store/memory"
	"taskboard/internal/user/models"
	usermemory "taskboard/internal/user/store/memory"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
)

type fixture struct {
	users   *usermemory.InMemoryStore
	audits  *auditmemory.InMemoryStore
	service *Service

	tenantID      uuid.UUID
	otherTenantID uuid.UUID
	adminID       uuid.UUID
	memberID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := usermemory.NewInMemoryStore()
	tenants := tenantmemory.NewInMemoryStore()
	audits := auditmemory.NewInMemoryStore()

	f := &fixture{
		users:         users,
		audits:        audits,
		service:       NewService(users, tenants, publisher.NewPublisher(audits)),
		tenantID:      uuid.New(),
		otherTenantID: uuid.New(),
		adminID:       uuid.New(),
		memberID:      uuid.New(),
	}

	tenants.Put(tenantmodels.Tenant{
		ID:          f.tenantID,
		Name:        "Acme",
		Subdomain:   "acme",
		Status:      tenantmodels.StatusActive,
		MaxUsers:    3,
		MaxProjects: 10,
	})
	users.Put(models.User{
		ID:        f.adminID,
		TenantID:  &f.tenantID,
		Email:     "admin@acme.io",
		FullName:  "Admin",
		Role:      requestcontext.RoleTenantAdmin,
		IsActive:  true,
		CreatedAt: time.Now(),
	})
	users.Put(models.User{
		ID:        f.memberID,
		TenantID:  &f.tenantID,
		Email:     "bob@acme.io",
		FullName:  "Bob",
		Role:      requestcontext.RoleUser,
		IsActive:  true,
		CreatedAt: time.Now(),
	})
	return f
}

func (f *fixture) asUser(userID uuid.UUID, role requestcontext.Role) context.Context {
	ctx := requestcontext.WithIdentity(context.Background(), requestcontext.Claims{
		UserID:   userID,
		TenantID: &f.tenantID,
		Role:     role,
	})
	return requestcontext.WithScope(ctx, requestcontext.TenantScope{TenantID: f.tenantID})
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.adminID, requestcontext.RoleTenantAdmin)

	user, err := f.service.Create(ctx, models.CreateRequest{
		Email:    "carol@acme.io",
		Password: "P@ss1",
		FullName: "Carol",
	})
	require.NoError(t, err)
	assert.Equal(t, requestcontext.RoleUser, user.Role, "role defaults to user")
	assert.True(t, user.IsActive)
	require.NotNil(t, user.TenantID)
	assert.Equal(t, f.tenantID, *user.TenantID)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "P@ss1", user.PasswordHash)

	events, err := f.audits.List(context.Background(), audit.ListFilter{
		TenantID: &f.tenantID,
		Action:   audit.ActionCreateUser,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, user.ID.String(), events[0].EntityID)
}

func TestCreate_RejectedAtUserLimit(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.adminID, requestcontext.RoleTenantAdmin)

	// Tenant allows 3 users and already has 2.
	_, err := f.service.Create(ctx, models.CreateRequest{
		Email: "three@acme.io", Password: "P@ss1", FullName: "Three",
	})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, models.CreateRequest{
		Email: "four@acme.io", Password: "P@ss1", FullName: "Four",
	})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeForbidden, dErrors.CodeOf(err))
	assert.Equal(t, "user limit reached for your subscription plan", dErrors.MessageOf(err))
}

func TestCreate_DuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.adminID, requestcontext.RoleTenantAdmin)

	_, err := f.service.Create(ctx, models.CreateRequest{
		Email: "bob@acme.io", Password: "P@ss1", FullName: "Bob Again",
	})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestCreate_SuperAdminRoleRejected(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.adminID, requestcontext.RoleTenantAdmin)

	_, err := f.service.Create(ctx, models.CreateRequest{
		Email: "evil@acme.io", Password: "P@ss1", FullName: "Evil",
		Role: string(requestcontext.RoleSuperAdmin),
	})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
}

func TestList_PaginatesAndCapsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.memberID, requestcontext.RoleUser)

	page, err := f.service.List(ctx, models.ListFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Pagination.Limit, "limit is capped at 100")
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Len(t, page.Users, 2)
}

func TestList_FiltersByRole(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.memberID, requestcontext.RoleUser)

	page, err := f.service.List(ctx, models.ListFilter{Role: requestcontext.RoleTenantAdmin})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, f.adminID, page.Users[0].ID)
}

func TestList_SearchMatchesNameOrEmail(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.memberID, requestcontext.RoleUser)

	page, err := f.service.List(ctx, models.ListFilter{Search: "bob"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "Bob", page.Users[0].FullName)
}

func TestUpdate_SelfCanRename(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.memberID, requestcontext.RoleUser)

	name := "Robert"
	user, err := f.service.Update(ctx, f.memberID, models.UpdateRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Robert", user.FullName)

	events, err := f.audits.List(context.Background(), audit.ListFilter{
		TenantID: &f.tenantID,
		Action:   audit.ActionUpdateUser,
	})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestUpdate_UserCannotTouchOthers(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.memberID, requestcontext.RoleUser)

	name := "Renamed"
	_, err := f.service.Update(ctx, f.adminID, models.UpdateRequest{FullName: &name})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeForbidden, dErrors.CodeOf(err))
}

func TestUpdate_UserRoleChangeIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.memberID, requestcontext.RoleUser)

	// A plain user sending role alongside full_name gets the rename but no
	// role escalation.
	name := "Robert"
	role := string(requestcontext.RoleTenantAdmin)
	user, err := f.service.Update(ctx, f.memberID, models.UpdateRequest{FullName: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, requestcontext.RoleUser, user.Role)
}

func TestUpdate_AdminCanChangeRoleAndActivation(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.adminID, requestcontext.RoleTenantAdmin)

	role := string(requestcontext.RoleTenantAdmin)
	inactive := false
	user, err := f.service.Update(ctx, f.memberID, models.UpdateRequest{Role: &role, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, requestcontext.RoleTenantAdmin, user.Role)
	assert.False(t, user.IsActive)
}

func TestUpdate_CrossTenantForbidden(t *testing.T) {
	f := newFixture(t)

	foreignID := uuid.New()
	f.users.Put(models.User{
		ID:       foreignID,
		TenantID: &f.otherTenantID,
		Email:    "eve@other.io",
		FullName: "Eve",
		Role:     requestcontext.RoleUser,
	})

	ctx := f.asUser(f.adminID, requestcontext.RoleTenantAdmin)
	name := "Hijack"
	_, err := f.service.Update(ctx, foreignID, models.UpdateRequest{FullName: &name})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeForbidden, dErrors.CodeOf(err))
}

func TestUpdate_NoValidFields(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.memberID, requestcontext.RoleUser)

	// Role-only payloads from plain users have nothing applicable.
	role := string(requestcontext.RoleTenantAdmin)
	_, err := f.service.Update(ctx, f.memberID, models.UpdateRequest{Role: &role})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
}

func TestUpdate_UnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := f.asUser(f.adminID, requestcontext.RoleTenantAdmin)

	name := "Ghost"
	_, err := f.service.Update(ctx, uuid.New(), models.UpdateRequest{FullName: &name})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

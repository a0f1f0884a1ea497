//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"taskboard/internal/storage"
	tenantmodels "taskboard/internal/tenant/models"
	tenantpostgres "taskboard/internal/tenant/store/postgres"
	"taskboard/internal/user/models"
	"taskboard/internal/user/store/postgres"
	"taskboard/pkg/requestcontext"
	"taskboard/pkg/testutil/containers"
)

type UserStoreSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	users    *postgres.Store
	tenants  *tenantpostgres.Store
	tenantID uuid.UUID
}

func TestUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.users = postgres.New(s.pg.DB)
	s.tenants = tenantpostgres.New(s.pg.DB)
}

func (s *UserStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.TruncateTables(ctx, "audit_logs", "tasks", "projects", "users", "tenants"))

	s.tenantID = uuid.New()
	_, err := s.pg.DB.ExecContext(ctx, `
		INSERT INTO tenants (id, name, subdomain, status, subscription_plan, max_users, max_projects)
		VALUES ($1, 'Acme', 'acme', 'active', 'free', 5, 3)
	`, s.tenantID)
	s.Require().NoError(err)
}

func (s *UserStoreSuite) newUser(email string, role requestcontext.Role) *models.User {
	tenantID := s.tenantID
	return &models.User{
		ID:           uuid.New(),
		TenantID:     &tenantID,
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "$2a$10$hash",
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *UserStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	user := s.newUser("a@acme.io", requestcontext.RoleUser)
	s.Require().NoError(s.users.Create(ctx, user))

	found, err := s.users.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("a@acme.io", found.Email)
	s.Require().NotNil(found.TenantID)
	s.Equal(s.tenantID, *found.TenantID)
	s.Equal(requestcontext.RoleUser, found.Role)
}

func (s *UserStoreSuite) TestDuplicateEmailInTenantConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.users.Create(ctx, s.newUser("dup@acme.io", requestcontext.RoleUser)))

	err := s.users.Create(ctx, s.newUser("dup@acme.io", requestcontext.RoleUser))
	s.Require().ErrorIs(err, storage.ErrConflict)
}

func (s *UserStoreSuite) TestSameEmailAcrossTenantsIsAllowed() {
	ctx := context.Background()
	s.Require().NoError(s.users.Create(ctx, s.newUser("shared@x.com", requestcontext.RoleUser)))

	otherTenant := uuid.New()
	_, err := s.pg.DB.ExecContext(ctx, `
		INSERT INTO tenants (id, name, subdomain, status) VALUES ($1, 'Globex', 'globex', 'active')
	`, otherTenant)
	s.Require().NoError(err)

	user := s.newUser("shared@x.com", requestcontext.RoleUser)
	user.TenantID = &otherTenant
	s.Require().NoError(s.users.Create(ctx, user))
}

func (s *UserStoreSuite) TestFindByEmailInTenant() {
	ctx := context.Background()
	user := s.newUser("b@acme.io", requestcontext.RoleTenantAdmin)
	s.Require().NoError(s.users.Create(ctx, user))

	found, err := s.users.FindByEmailInTenant(ctx, "b@acme.io", s.tenantID)
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)

	_, err = s.users.FindByEmailInTenant(ctx, "b@acme.io", uuid.New())
	s.Require().ErrorIs(err, storage.ErrNotFound)
}

func (s *UserStoreSuite) TestFindSuperAdminByEmail() {
	ctx := context.Background()
	admin := s.newUser("root@platform.io", requestcontext.RoleSuperAdmin)
	admin.TenantID = nil
	s.Require().NoError(s.users.Create(ctx, admin))

	found, err := s.users.FindSuperAdminByEmail(ctx, "root@platform.io")
	s.Require().NoError(err)
	s.Nil(found.TenantID)

	// Regular accounts are invisible to the super-admin lookup.
	s.Require().NoError(s.users.Create(ctx, s.newUser("plain@acme.io", requestcontext.RoleUser)))
	_, err = s.users.FindSuperAdminByEmail(ctx, "plain@acme.io")
	s.Require().ErrorIs(err, storage.ErrNotFound)
}

func (s *UserStoreSuite) TestListFiltersAndPaginates() {
	ctx := context.Background()
	s.Require().NoError(s.users.Create(ctx, s.newUser("alice@acme.io", requestcontext.RoleTenantAdmin)))
	s.Require().NoError(s.users.Create(ctx, s.newUser("bob@acme.io", requestcontext.RoleUser)))
	s.Require().NoError(s.users.Create(ctx, s.newUser("carol@acme.io", requestcontext.RoleUser)))

	users, total, err := s.users.List(ctx, s.tenantID, models.ListFilter{Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Len(users, 2)

	users, total, err = s.users.List(ctx, s.tenantID, models.ListFilter{Page: 1, Limit: 50, Role: requestcontext.RoleTenantAdmin})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(users, 1)
	s.Equal("alice@acme.io", users[0].Email)

	users, _, err = s.users.List(ctx, s.tenantID, models.ListFilter{Page: 1, Limit: 50, Search: "BOB"})
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal("bob@acme.io", users[0].Email)
}

func (s *UserStoreSuite) TestUpdate() {
	ctx := context.Background()
	user := s.newUser("d@acme.io", requestcontext.RoleUser)
	s.Require().NoError(s.users.Create(ctx, user))

	user.FullName = "Renamed"
	user.Role = requestcontext.RoleTenantAdmin
	user.IsActive = false
	s.Require().NoError(s.users.Update(ctx, user))

	found, err := s.users.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", found.FullName)
	s.Equal(requestcontext.RoleTenantAdmin, found.Role)
	s.False(found.IsActive)
}

func (s *UserStoreSuite) TestTenantStoreRoundTrip() {
	ctx := context.Background()

	tenant, err := s.tenants.FindBySubdomain(ctx, "ACME")
	s.Require().NoError(err, "subdomain lookup is case-insensitive")
	s.Equal(s.tenantID, tenant.ID)

	tenant.Status = tenantmodels.StatusSuspended
	tenant.MaxProjects = 10
	tenant.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.tenants.Update(ctx, tenant))

	counts, err := s.tenants.CountByStatus(ctx)
	s.Require().NoError(err)
	s.Equal(1, counts.Total)
	s.Equal(1, counts.Suspended)

	overviews, err := s.tenants.ListOverviews(ctx)
	s.Require().NoError(err)
	s.Require().Len(overviews, 1)
	s.Equal(0, overviews[0].TotalUsers)
}

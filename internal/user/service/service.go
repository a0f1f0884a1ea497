package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/audit"
	"taskboard/internal/authz"
	"taskboard/internal/platform/metrics"
	"taskboard/internal/storage"
	tenantmodels "taskboard/internal/tenant/models"
	"taskboard/internal/user/models"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
	"taskboard/pkg/secrets"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.ListFilter) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type TenantFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*tenantmodels.Tenant, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	users   UserStore
	tenants TenantFinder
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(users UserStore, tenants TenantFinder, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		users:   users,
		tenants: tenants,
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create provisions a user in the caller's effective tenant. The
// subscription's max_users cap is enforced before the insert; at or above
// the cap creation is rejected.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	scope, ok := requestcontext.Scope(ctx)
	if !ok || scope.Unscoped {
		return nil, dErrors.New(dErrors.CodeForbidden, "tenant context required")
	}

	tenant, err := s.tenants.FindByID(ctx, scope.TenantID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find tenant")
	}

	count, err := s.users.CountByTenant(ctx, scope.TenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "count tenant users")
	}
	if count >= tenant.MaxUsers {
		return nil, dErrors.New(dErrors.CodeForbidden, "user limit reached for your subscription plan")
	}

	hash, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	tenantID := scope.TenantID
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     &tenantID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         requestcontext.Role(req.Role),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already exists in this tenant")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create user")
	}

	if s.metrics != nil {
		s.metrics.UsersCreated.Inc()
	}
	s.audit(ctx, audit.ActionCreateUser, user.ID.String())
	return user, nil
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) (*models.Page, error) {
	scope, ok := requestcontext.Scope(ctx)
	if !ok || scope.Unscoped {
		return nil, dErrors.New(dErrors.CodeForbidden, "tenant context required")
	}
	filter.Normalize()

	users, total, err := s.users.List(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list users")
	}
	totalPages := (total + filter.Limit - 1) / filter.Limit
	return &models.Page{
		Users: users,
		Pagination: models.Pagination{
			CurrentPage: filter.Page,
			TotalPages:  totalPages,
			Total:       total,
			Limit:       filter.Limit,
		},
	}, nil
}

// Update applies a partial update to a user in the caller's tenant.
//
// A plain user may only touch their own FullName. A tenant_admin may also
// change Role and IsActive for anyone in the tenant. Field changes outside
// the caller's allowance are silently ignored rather than rejected, matching
// the whitelist behavior clients already rely on.
func (s *Service) Update(ctx context.Context, targetID uuid.UUID, req models.UpdateRequest) (*models.User, error) {
	claims, ok := requestcontext.Identity(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	scope, ok := requestcontext.Scope(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeForbidden, "tenant context required")
	}

	target, err := s.users.FindByID(ctx, targetID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find user")
	}

	if target.TenantID == nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "cross-tenant access forbidden")
	}
	if err := authz.CheckTenant(scope, *target.TenantID); err != nil {
		return nil, err
	}
	if claims.Role == requestcontext.RoleUser && claims.UserID != target.ID {
		return nil, dErrors.New(dErrors.CodeForbidden, "you can only update your own profile")
	}

	updated := false
	if req.FullName != nil && *req.FullName != "" {
		target.FullName = *req.FullName
		updated = true
	}
	if claims.Role == requestcontext.RoleTenantAdmin || claims.Role == requestcontext.RoleSuperAdmin {
		if req.Role != nil {
			role := requestcontext.Role(*req.Role)
			if role != requestcontext.RoleUser && role != requestcontext.RoleTenantAdmin {
				return nil, dErrors.New(dErrors.CodeValidation, "role must be tenant_admin or user")
			}
			target.Role = role
			updated = true
		}
		if req.IsActive != nil {
			target.IsActive = *req.IsActive
			updated = true
		}
	}
	if !updated {
		return nil, dErrors.New(dErrors.CodeValidation, "no valid fields to update")
	}

	if err := s.users.Update(ctx, target); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update user")
	}

	s.audit(ctx, audit.ActionUpdateUser, target.ID.String())
	return target, nil
}

func (s *Service) audit(ctx context.Context, action audit.Action, entityID string) {
	claims, ok := requestcontext.Identity(ctx)
	if !ok {
		return
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		TenantID:   claims.TenantID,
		ActorID:    claims.UserID,
		Action:     action,
		EntityType: "user",
		EntityID:   entityID,
		IP:         requestcontext.ClientIP(ctx),
	})
}

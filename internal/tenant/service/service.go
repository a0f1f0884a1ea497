package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/audit"
	"taskboard/internal/storage"
	"taskboard/internal/tenant/models"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
)

// TenantStore is the persistence surface the service needs. Both the
// postgres and in-memory implementations satisfy it.
type TenantStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	ListOverviews(ctx context.Context) ([]models.Overview, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	CountByStatus(ctx context.Context) (models.Counts, error)
}

// UserCounter reports the platform-wide user population for admin stats.
type UserCounter interface {
	CountNonSuperAdmin(ctx context.Context) (int, error)
}

// AuditPublisher records tenant mutations. Emission never fails the caller.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	tenants TenantStore
	users   UserCounter
	auditor AuditPublisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(tenants TenantStore, users UserCounter, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		tenants: tenants,
		users:   users,
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats aggregates platform-wide counts. Route middleware restricts this to
// super_admin, so no further authorization happens here.
func (s *Service) Stats(ctx context.Context) (*models.AdminStats, error) {
	counts, err := s.tenants.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "count tenants")
	}
	totalUsers, err := s.users.CountNonSuperAdmin(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "count users")
	}
	return &models.AdminStats{
		TotalTenants:     counts.Total,
		ActiveTenants:    counts.Active,
		SuspendedTenants: counts.Suspended,
		TotalUsers:       totalUsers,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]models.Overview, error) {
	overviews, err := s.tenants.ListOverviews(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list tenants")
	}
	return overviews, nil
}

// Update applies a partial tenant update. Suspending a tenant takes effect on
// the next login attempt of any of its users.
func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, req models.UpdateRequest) (*models.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find tenant")
	}

	if req.Status != nil {
		tenant.Status = *req.Status
	}
	if req.SubscriptionPlan != nil {
		tenant.SubscriptionPlan = *req.SubscriptionPlan
	}
	if req.MaxUsers != nil {
		tenant.MaxUsers = *req.MaxUsers
	}
	if req.MaxProjects != nil {
		tenant.MaxProjects = *req.MaxProjects
	}
	tenant.UpdatedAt = time.Now().UTC()

	if err := s.tenants.Update(ctx, tenant); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tenant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update tenant")
	}

	s.audit(ctx, audit.ActionUpdateTenant, "tenant", tenant.ID.String())
	return tenant, nil
}

func (s *Service) audit(ctx context.Context, action audit.Action, entityType, entityID string) {
	claims, ok := requestcontext.Identity(ctx)
	if !ok {
		return
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		TenantID:   claims.TenantID,
		ActorID:    claims.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IP:         requestcontext.ClientIP(ctx),
	})
}

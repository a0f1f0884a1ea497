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
	"taskboard/internal/project/models"
	"taskboard/internal/storage"
	tenantmodels "taskboard/internal/tenant/models"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
)

type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.ListFilter) ([]models.Overview, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type TenantFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*tenantmodels.Tenant, error)
}

// AuditPublisher records project mutations. Emit never fails the caller;
// EmitSync is used before deletes so the trail survives the removal.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
	EmitSync(ctx context.Context, event audit.Event)
}

type Service struct {
	projects ProjectStore
	tenants  TenantFinder
	auditor  AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(projects ProjectStore, tenants TenantFinder, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		projects: projects,
		tenants:  tenants,
		auditor:  auditor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a project to the caller's tenant. The subscription's
// max_projects cap is enforced before the insert.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	claims, scope, err := callerScope(ctx)
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenants.FindByID(ctx, scope.TenantID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find tenant")
	}

	count, err := s.projects.CountByTenant(ctx, scope.TenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "count tenant projects")
	}
	if count >= tenant.MaxProjects {
		return nil, dErrors.New(dErrors.CodeForbidden, "project limit reached for this subscription")
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:          uuid.New(),
		TenantID:    scope.TenantID,
		Name:        req.Name,
		Description: req.Description,
		Status:      models.Status(req.Status),
		CreatedBy:   claims.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create project")
	}

	if s.metrics != nil {
		s.metrics.ProjectsCreated.Inc()
	}
	s.audit(ctx, audit.ActionCreateProject, project.ID)
	return project, nil
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]models.Overview, error) {
	_, scope, err := callerScope(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid project status")
	}
	overviews, err := s.projects.List(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list projects")
	}
	return overviews, nil
}

// Update applies a partial update after the ownership check: tenant_admin
// may touch any project in the tenant, a plain user only their own.
func (s *Service) Update(ctx context.Context, projectID uuid.UUID, req models.UpdateRequest) (*models.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	project, err := s.authorizeMutation(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = models.Status(*req.Status)
	}
	project.UpdatedAt = time.Now().UTC()

	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update project")
	}

	s.audit(ctx, audit.ActionUpdateProject, project.ID)
	return project, nil
}

// Delete removes a project after the same ownership check as Update. The
// audit record is written synchronously first: once the row is gone there is
// nothing left to attribute the deletion to.
func (s *Service) Delete(ctx context.Context, projectID uuid.UUID) error {
	project, err := s.authorizeMutation(ctx, projectID)
	if err != nil {
		return err
	}

	claims, _ := requestcontext.Identity(ctx)
	s.auditor.EmitSync(ctx, audit.Event{
		TenantID:   claims.TenantID,
		ActorID:    claims.UserID,
		Action:     audit.ActionDeleteProject,
		EntityType: "project",
		EntityID:   project.ID.String(),
		IP:         requestcontext.ClientIP(ctx),
	})

	if err := s.projects.Delete(ctx, projectID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete project")
	}
	return nil
}

// authorizeMutation loads the project and runs the full mutation gate:
// existence, tenant scope, then ownership.
func (s *Service) authorizeMutation(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	claims, scope, err := callerScope(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find project")
	}

	if err := authz.CheckTenant(scope, project.TenantID); err != nil {
		return nil, err
	}
	if err := authz.CanMutate(claims, project.CreatedBy); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) audit(ctx context.Context, action audit.Action, projectID uuid.UUID) {
	claims, ok := requestcontext.Identity(ctx)
	if !ok {
		return
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		TenantID:   claims.TenantID,
		ActorID:    claims.UserID,
		Action:     action,
		EntityType: "project",
		EntityID:   projectID.String(),
		IP:         requestcontext.ClientIP(ctx),
	})
}

func callerScope(ctx context.Context) (requestcontext.Claims, requestcontext.TenantScope, error) {
	claims, ok := requestcontext.Identity(ctx)
	if !ok {
		return requestcontext.Claims{}, requestcontext.TenantScope{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	scope, ok := requestcontext.Scope(ctx)
	if !ok {
		return requestcontext.Claims{}, requestcontext.TenantScope{}, dErrors.New(dErrors.CodeForbidden, "tenant context required")
	}
	return claims, scope, nil
}

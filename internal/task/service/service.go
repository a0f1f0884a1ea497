package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/audit"
	"taskboard/internal/platform/metrics"
	projectmodels "taskboard/internal/project/models"
	"taskboard/internal/storage"
	"taskboard/internal/task/models"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
)

type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	ListByProject(ctx context.Context, projectID, tenantID uuid.UUID) ([]models.Task, error)
	UpdateStatus(ctx context.Context, taskID, tenantID uuid.UUID, status models.Status) (*models.Task, error)
}

type ProjectFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*projectmodels.Project, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	tasks    TaskStore
	projects ProjectFinder
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

func NewService(tasks TaskStore, projects ProjectFinder, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		tasks:    tasks,
		projects: projects,
		auditor:  auditor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	scope, err := callerTenant(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.projectInTenant(ctx, projectID, scope.TenantID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID, scope.TenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list tasks")
	}
	return tasks, nil
}

// Create adds a task to a project in the caller's tenant. A project outside
// the tenant reads as not found so its existence is never confirmed.
func (s *Service) Create(ctx context.Context, projectID uuid.UUID, req models.CreateRequest) (*models.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	scope, err := callerTenant(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.projectInTenant(ctx, projectID, scope.TenantID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		TenantID:    scope.TenantID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusTodo,
		Priority:    models.Priority(req.Priority),
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create task")
	}

	if s.metrics != nil {
		s.metrics.TasksCreated.Inc()
	}
	s.audit(ctx, audit.ActionCreateTask, task.ID)
	return task, nil
}

// UpdateStatus moves a task between workflow states. Any authenticated user
// of the tenant can do this; tasks have no ownership rule.
func (s *Service) UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.Status) (*models.Task, error) {
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid task status")
	}
	scope, err := callerTenant(ctx)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.UpdateStatus(ctx, taskID, scope.TenantID, status)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update task status")
	}

	s.audit(ctx, audit.ActionUpdateTaskStatus, task.ID)
	return task, nil
}

func (s *Service) projectInTenant(ctx context.Context, projectID, tenantID uuid.UUID) (*projectmodels.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find project")
	}
	if project.TenantID != tenantID {
		return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	return project, nil
}

func (s *Service) audit(ctx context.Context, action audit.Action, taskID uuid.UUID) {
	claims, ok := requestcontext.Identity(ctx)
	if !ok {
		return
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		TenantID:   claims.TenantID,
		ActorID:    claims.UserID,
		Action:     action,
		EntityType: "task",
		EntityID:   taskID.String(),
		IP:         requestcontext.ClientIP(ctx),
	})
}

func callerTenant(ctx context.Context) (requestcontext.TenantScope, error) {
	scope, ok := requestcontext.Scope(ctx)
	if !ok {
		return requestcontext.TenantScope{}, dErrors.New(dErrors.CodeForbidden, "tenant context required")
	}
	return scope, nil
}

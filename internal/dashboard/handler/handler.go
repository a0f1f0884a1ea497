package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/httputil"
	"taskboard/pkg/requestcontext"
)

// Counters are the per-tenant aggregates behind the dashboard. Each resource
// store contributes its own count; the dashboard owns no storage.
type ProjectCounter interface {
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type TaskCounter interface {
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (total, completed int, err error)
}

type UserCounter interface {
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type Stats struct {
	Projects       int `json:"projects"`
	Tasks          int `json:"tasks"`
	CompletedTasks int `json:"completed_tasks"`
	Users          int `json:"users"`
}

type Handler struct {
	projects ProjectCounter
	tasks    TaskCounter
	users    UserCounter
	logger   *slog.Logger
}

func New(projects ProjectCounter, tasks TaskCounter, users UserCounter, logger *slog.Logger) *Handler {
	return &Handler{projects: projects, tasks: tasks, users: users, logger: logger}
}

// Register mounts the dashboard on an authenticated, tenant-scoped router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard/stats", h.stats)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestcontext.Scope(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "tenant context required"))
		return
	}

	ctx := r.Context()
	projects, err := h.projects.CountByTenant(ctx, scope.TenantID)
	if err != nil {
		h.fail(w, "count projects", err)
		return
	}
	tasks, completed, err := h.tasks.CountByTenant(ctx, scope.TenantID)
	if err != nil {
		h.fail(w, "count tasks", err)
		return
	}
	users, err := h.users.CountByTenant(ctx, scope.TenantID)
	if err != nil {
		h.fail(w, "count users", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, Stats{
		Projects:       projects,
		Tasks:          tasks,
		CompletedTasks: completed,
		Users:          users,
	})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("dashboard stats failed", "op", op, "error", err)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, op))
}

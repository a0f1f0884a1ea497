package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskboard/internal/tenant/models"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/httputil"
)

// TenantService is the application surface the admin endpoints call into.
type TenantService interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
	List(ctx context.Context) ([]models.Overview, error)
	Update(ctx context.Context, tenantID uuid.UUID, req models.UpdateRequest) (*models.Tenant, error)
}

type Handler struct {
	service TenantService
	logger  *slog.Logger
}

func New(service TenantService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin routes. The caller is responsible for wrapping
// the router with super_admin role enforcement.
func (h *Handler) Register(r chi.Router) {
	r.Get("/stats", h.stats)
	r.Get("/tenants", h.list)
	r.Patch("/tenants/{tenantID}", h.update)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("admin stats failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	overviews, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("admin tenant listing failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tenants": overviews})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid tenant id"))
		return
	}

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	tenant, err := h.service.Update(r.Context(), tenantID, req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.Error("tenant update failed", "tenant_id", tenantID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tenant)
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskboard/internal/project/models"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/httputil"
)

type ProjectService interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.Project, error)
	List(ctx context.Context, filter models.ListFilter) ([]models.Overview, error)
	Update(ctx context.Context, projectID uuid.UUID, req models.UpdateRequest) (*models.Project, error)
	Delete(ctx context.Context, projectID uuid.UUID) error
}

type Handler struct {
	service ProjectService
	logger  *slog.Logger
}

func New(service ProjectService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the project routes on an authenticated, tenant-scoped
// router. Ownership checks live in the service, not here.
func (h *Handler) Register(r chi.Router) {
	r.Get("/projects", h.list)
	r.Post("/projects", h.create)
	r.Put("/projects/{projectID}", h.update)
	r.Delete("/projects/{projectID}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.ListFilter{
		Status: models.Status(query.Get("status")),
		Search: query.Get("search"),
	}

	overviews, err := h.service.List(r.Context(), filter)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.Error("project listing failed", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"projects": overviews})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	project, err := h.service.Create(r.Context(), req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.Error("project creation failed", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, project)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid project id"))
		return
	}

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	project, err := h.service.Update(r.Context(), projectID, req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.Error("project update failed", "project_id", projectID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, project)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid project id"))
		return
	}

	if err := h.service.Delete(r.Context(), projectID); err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.Error("project deletion failed", "project_id", projectID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}

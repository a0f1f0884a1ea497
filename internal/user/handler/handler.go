package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskboard/internal/authz"
	"taskboard/internal/platform/middleware"
	"taskboard/internal/user/models"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/httputil"
	"taskboard/pkg/requestcontext"
)

type UserService interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.User, error)
	List(ctx context.Context, filter models.ListFilter) (*models.Page, error)
	Update(ctx context.Context, targetID uuid.UUID, req models.UpdateRequest) (*models.User, error)
}

type Handler struct {
	service UserService
	logger  *slog.Logger
}

func New(service UserService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the user routes on an authenticated, tenant-scoped router.
// Listing and self-updates are open to plain users; provisioning is
// tenant_admin only.
func (h *Handler) Register(r chi.Router) {
	members := middleware.RequireAnyRole(requestcontext.RoleTenantAdmin, requestcontext.RoleUser)
	admins := middleware.RequireRole(requestcontext.RoleTenantAdmin)

	r.With(members).Get("/tenants/{tenantID}/users", h.list)
	r.With(admins).Post("/tenants/{tenantID}/users", h.create)
	r.With(members).Put("/users/{userID}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if err := h.checkPathTenant(r); err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	filter := models.ListFilter{
		Search: query.Get("search"),
		Role:   requestcontext.Role(query.Get("role")),
	}
	if page := query.Get("page"); page != "" {
		filter.Page, _ = strconv.Atoi(page)
	}
	if limit := query.Get("limit"); limit != "" {
		filter.Limit, _ = strconv.Atoi(limit)
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.Error("user listing failed", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := h.checkPathTenant(r); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req models.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.Error("user creation failed", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user id"))
		return
	}

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	user, err := h.service.Update(r.Context(), targetID, req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.Error("user update failed", "user_id", targetID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// checkPathTenant rejects requests whose path tenant differs from the
// caller's effective scope. The path segment is redundant with the token but
// kept for URL compatibility, so the mismatch case must stay a hard error.
func (h *Handler) checkPathTenant(r *http.Request) error {
	pathTenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "invalid tenant id")
	}
	scope, ok := requestcontext.Scope(r.Context())
	if !ok {
		return dErrors.New(dErrors.CodeForbidden, "tenant context required")
	}
	return authz.CheckTenant(scope, pathTenantID)
}

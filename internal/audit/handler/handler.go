package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/audit"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/platform/httputil"
	"taskboard/pkg/requestcontext"
)

type Handler struct {
	store  audit.Store
	logger *slog.Logger
}

func New(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the audit listing. The route sits behind auth, tenant
// scoping and a tenant_admin-or-super_admin role check.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-logs", h.list)
}

// list returns the newest matching events. A tenant_admin only ever sees
// their own tenant; an unscoped caller reads across all tenants, which is
// the one read path that crosses tenant boundaries.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestcontext.Scope(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "tenant context required"))
		return
	}

	query := r.URL.Query()
	filter := audit.ListFilter{
		Action:     audit.Action(query.Get("action")),
		EntityType: query.Get("entity_type"),
	}
	if !scope.Unscoped {
		tenantID := scope.TenantID
		filter.TenantID = &tenantID
	}

	events, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit listing failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list audit logs"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"logs": events})
}

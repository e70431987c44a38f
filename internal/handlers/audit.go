package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/middleware"
	"github.com/otcheredev/clinic-management/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListAuditLogs returns the audit trail. Query params: clinic_id (superadmin
// only; clinic admins are pinned to their own clinic), resource_id, limit,
// offset.
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return
	}

	clinicID := uuid.Nil
	if raw := r.URL.Query().Get("clinic_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid clinic ID"})
			return
		}
		clinicID = id
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	logs, err := h.auditService.List(r.Context(), caller, clinicID, r.URL.Query().Get("resource_id"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

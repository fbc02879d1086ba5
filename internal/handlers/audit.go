package handlers

import (
	"net/http"
	"strconv"

	"github.com/clinicops/box-scheduler/internal/middleware"
	"github.com/clinicops/box-scheduler/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// List retrieves the tenant's audit trail, newest first, paged by limit
// and offset
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	logs, err := h.auditService.List(ctx, user, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

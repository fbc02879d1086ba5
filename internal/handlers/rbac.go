package handlers

import (
	"net/http"

	"github.com/clinicops/box-scheduler/internal/middleware"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/services"
	"github.com/go-chi/chi/v5"
)

type RBACHandler struct {
	rbacService *services.RBACService
}

func NewRBACHandler(rbacService *services.RBACService) *RBACHandler {
	return &RBACHandler{
		rbacService: rbacService,
	}
}

// AssignRoles replaces a user's role binding within the caller's tenant
func (h *RBACHandler) AssignRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	var req models.RoleBindingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	binding, err := h.rbacService.AssignRoles(ctx, user, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, binding)
}

// GetBinding retrieves a user's role binding within the caller's tenant
func (h *RBACHandler) GetBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	userID, ok := parseID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	binding, err := h.rbacService.GetBinding(ctx, user, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, binding)
}

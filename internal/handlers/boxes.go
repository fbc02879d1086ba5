package handlers

import (
	"net/http"

	"github.com/clinicops/box-scheduler/internal/middleware"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/services"
	"github.com/go-chi/chi/v5"
)

type BoxHandler struct {
	boxService *services.BoxService
}

func NewBoxHandler(boxService *services.BoxService) *BoxHandler {
	return &BoxHandler{
		boxService: boxService,
	}
}

// Create creates a new box
func (h *BoxHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	var req models.BoxRequest
	if !decodeBody(w, r, &req) {
		return
	}

	box, err := h.boxService.Create(ctx, user, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, box)
}

// List retrieves all boxes for the caller's tenant
func (h *BoxHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	boxes, err := h.boxService.List(ctx, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, boxes)
}

// Get retrieves a specific box
func (h *BoxHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	box, err := h.boxService.Get(ctx, user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, box)
}

// Update updates a box
func (h *BoxHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req models.BoxRequest
	if !decodeBody(w, r, &req) {
		return
	}

	box, err := h.boxService.Update(ctx, user, id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, box)
}

// Delete removes a box
func (h *BoxHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.boxService.Delete(ctx, user, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/middleware"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

// Create books a doctor into a box for a time window
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	var req models.AssignmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	assignment, err := h.assignmentService.Create(ctx, user, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, assignment)
}

// List retrieves assignments, optionally filtered by box_id, doctor_id or date
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	var filter models.AssignmentFilter
	if raw := r.URL.Query().Get("box_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: apperrors.CodeValidation, Message: "invalid box_id"})
			return
		}
		filter.BoxID = &id
	}
	if raw := r.URL.Query().Get("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: apperrors.CodeValidation, Message: "invalid doctor_id"})
			return
		}
		filter.DoctorID = &id
	}
	filter.Date = r.URL.Query().Get("date")

	assignments, err := h.assignmentService.List(ctx, user, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}

// Get retrieves a specific assignment
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	assignment, err := h.assignmentService.Get(ctx, user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, assignment)
}

// Update applies a partial update to an assignment
func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var patch models.AssignmentPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	assignment, err := h.assignmentService.Update(ctx, user, id, &patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, assignment)
}

// Delete removes an assignment. Fails with a conflict when appointments
// still hang off it.
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.assignmentService.Delete(ctx, user, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

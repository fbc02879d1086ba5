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

type AppointmentHandler struct {
	appointmentService *services.AppointmentService
}

func NewAppointmentHandler(appointmentService *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
	}
}

// Create books a patient slot inside an assignment
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	var req models.AppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	appointment, err := h.appointmentService.Create(ctx, user, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, appointment)
}

// List retrieves appointments filtered by assignment_id, box_id, doctor_id,
// date or status
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	var filter models.AppointmentFilter
	if raw := r.URL.Query().Get("assignment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: apperrors.CodeValidation, Message: "invalid assignment_id"})
			return
		}
		filter.AssignmentID = &id
	}
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
	filter.Status = models.AppointmentStatus(r.URL.Query().Get("status"))

	appointments, err := h.appointmentService.List(ctx, user, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, appointments)
}

// Get retrieves a specific appointment
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	appointment, err := h.appointmentService.Get(ctx, user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, appointment)
}

// Update applies a partial update. Assignment, box, doctor and specialty
// cannot be changed through this endpoint.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var patch models.AppointmentPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	appointment, err := h.appointmentService.Update(ctx, user, id, &patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, appointment)
}

// Delete removes an appointment
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.appointmentService.Delete(ctx, user, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

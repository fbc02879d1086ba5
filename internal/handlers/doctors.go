package handlers

import (
	"net/http"

	"github.com/clinicops/box-scheduler/internal/middleware"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/services"
	"github.com/go-chi/chi/v5"
)

type DoctorHandler struct {
	doctorService *services.DoctorService
}

func NewDoctorHandler(doctorService *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{
		doctorService: doctorService,
	}
}

// Create creates a new doctor
func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	var req models.DoctorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doctor, err := h.doctorService.Create(ctx, user, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, doctor)
}

// List retrieves all doctors for the caller's tenant
func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.GetUserContext(ctx)
	if !ok {
		unauthenticated(w)
		return
	}

	doctors, err := h.doctorService.List(ctx, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doctors)
}

// Get retrieves a specific doctor
func (h *DoctorHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	doctor, err := h.doctorService.Get(ctx, user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doctor)
}

// Update updates a doctor
func (h *DoctorHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req models.DoctorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doctor, err := h.doctorService.Update(ctx, user, id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, doctor)
}

// Delete removes a doctor
func (h *DoctorHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.doctorService.Delete(ctx, user, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

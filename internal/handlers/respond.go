package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Code      string               `json:"code"`
	Message   string               `json:"message"`
	Conflicts []apperrors.Conflict `json:"conflicts,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError maps service errors onto the HTTP surface. Anything outside
// the known taxonomy is logged and reported as a bare internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    apperrors.CodeValidation,
			Message: validationErr.Message,
		})
		return
	}

	var authErr *apperrors.AuthorizationError
	if errors.As(err, &authErr) {
		writeJSON(w, http.StatusForbidden, errorResponse{
			Code:    apperrors.CodePermissionDenied,
			Message: authErr.Error(),
		})
		return
	}

	var notFoundErr *apperrors.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    apperrors.CodeNotFound,
			Message: notFoundErr.Error(),
		})
		return
	}

	var conflictErr *apperrors.ConflictError
	if errors.As(err, &conflictErr) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:      conflictErr.Code,
			Message:   conflictErr.Message,
			Conflicts: conflictErr.Conflicts,
		})
		return
	}

	log.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Code:    apperrors.CodeInternal,
		Message: "internal error",
	})
}

// unauthenticated mirrors the JSON shape the auth middleware writes for
// requests that never carried a valid identity.
func unauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Code:    apperrors.CodeUnauthenticated,
		Message: "user context not found",
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    apperrors.CodeValidation,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    apperrors.CodeValidation,
			Message: "invalid id",
		})
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/box-scheduler/internal/apperrors"
)

func doWriteError(t *testing.T, err error) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/assignments", nil)

	writeError(w, r, err)

	var body errorResponse
	if decodeErr := json.NewDecoder(w.Body).Decode(&body); decodeErr != nil {
		t.Fatalf("decode response: %v", decodeErr)
	}
	return w, body
}

func TestWriteErrorValidation(t *testing.T) {
	w, body := doWriteError(t, apperrors.Validation("start must precede end"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if body.Code != apperrors.CodeValidation {
		t.Errorf("code = %s, want %s", body.Code, apperrors.CodeValidation)
	}
	if body.Message != "start must precede end" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestWriteErrorAuthorization(t *testing.T) {
	w, body := doWriteError(t, &apperrors.AuthorizationError{Permission: "assignments:write"})

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if body.Code != apperrors.CodePermissionDenied {
		t.Errorf("code = %s, want %s", body.Code, apperrors.CodePermissionDenied)
	}
}

func TestWriteErrorNotFound(t *testing.T) {
	w, body := doWriteError(t, apperrors.NotFound("assignment"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if body.Code != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", body.Code, apperrors.CodeNotFound)
	}
}

func TestWriteErrorConflict(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	conflict := apperrors.Conflict{
		ID:     uuid.New(),
		Start:  start,
		End:    start.Add(30 * time.Minute),
		Detail: "Jane Doe",
	}
	w, body := doWriteError(t, &apperrors.ConflictError{
		Code:      apperrors.CodeAppointmentConflict,
		Message:   "slot is already booked",
		Conflicts: []apperrors.Conflict{conflict},
	})

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if body.Code != apperrors.CodeAppointmentConflict {
		t.Errorf("code = %s, want %s", body.Code, apperrors.CodeAppointmentConflict)
	}
	if len(body.Conflicts) != 1 || body.Conflicts[0].ID != conflict.ID {
		t.Fatalf("conflicts = %+v, want the colliding slot", body.Conflicts)
	}
	if body.Conflicts[0].Detail != "Jane Doe" {
		t.Errorf("detail = %q, want patient name", body.Conflicts[0].Detail)
	}
}

func TestHandlerWithoutUserContext(t *testing.T) {
	h := NewBoxHandler(nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/boxes", nil)
	h.List(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var body errorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Code != apperrors.CodeUnauthenticated {
		t.Errorf("code = %s, want %s", body.Code, apperrors.CodeUnauthenticated)
	}
}

func TestWriteErrorUnknown(t *testing.T) {
	w, body := doWriteError(t, errors.New("pq: connection reset"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if body.Code != apperrors.CodeInternal {
		t.Errorf("code = %s, want %s", body.Code, apperrors.CodeInternal)
	}
	// The driver error must never reach the client.
	if body.Message != "internal error" {
		t.Errorf("message = %q, want opaque internal error", body.Message)
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/cache"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/rbac"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

// grantRoles seeds the catalog and binds the given roles to the user
func grantRoles(t *testing.T, user models.UserContext, roles ...string) *rbac.Resolver {
	t.Helper()
	kv := cache.NewMemoryCache()
	t.Cleanup(func() { kv.Close() })

	store := rbac.NewStore(kv)
	ctx := context.Background()
	if err := store.SeedCatalog(ctx, models.DefaultRoles); err != nil {
		t.Fatalf("SeedCatalog: %v", err)
	}
	if len(roles) > 0 {
		err := store.SetBinding(ctx, models.RoleBinding{
			TenantID: user.TenantID,
			UserID:   user.UserID,
			Roles:    roles,
		})
		if err != nil {
			t.Fatalf("SetBinding: %v", err)
		}
	}
	return rbac.NewResolver(store)
}

type assignmentFixture struct {
	svc          *AssignmentService
	assignments  *fakeAssignmentStore
	appointments *fakeAppointmentStore
	user         models.UserContext
}

func newAssignmentFixture(t *testing.T, roles ...string) *assignmentFixture {
	t.Helper()
	user := models.UserContext{UserID: uuid.New(), TenantID: uuid.New()}
	resolver := grantRoles(t, user, roles...)

	assignments := newFakeAssignmentStore()
	appointments := newFakeAppointmentStore()
	svc := NewAssignmentService(assignments, appointments, resolver, &fakeAuditStore{})
	return &assignmentFixture{svc: svc, assignments: assignments, appointments: appointments, user: user}
}

func mustCreateAssignment(t *testing.T, f *assignmentFixture, boxID, doctorID uuid.UUID, start, end time.Time) *models.Assignment {
	t.Helper()
	a, err := f.svc.Create(context.Background(), f.user, &models.AssignmentRequest{
		BoxID:    boxID,
		DoctorID: doctorID,
		Start:    start,
		End:      end,
	})
	if err != nil {
		t.Fatalf("Create assignment: %v", err)
	}
	return a
}

func TestCreateAssignment(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")

	a := mustCreateAssignment(t, f, uuid.New(), uuid.New(), at(8, 0), at(16, 0))

	if a.Status != models.AssignmentStatusScheduled {
		t.Errorf("status = %s, want SCHEDULED", a.Status)
	}
	if a.Date != "2025-03-10" {
		t.Errorf("date = %s, want 2025-03-10", a.Date)
	}
	if a.TenantID != f.user.TenantID {
		t.Errorf("tenant = %s, want caller's tenant", a.TenantID)
	}
}

func TestCreateAssignmentBoxConflict(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")
	box := uuid.New()

	existing := mustCreateAssignment(t, f, box, uuid.New(), at(8, 0), at(16, 0))

	_, err := f.svc.Create(context.Background(), f.user, &models.AssignmentRequest{
		BoxID:    box,
		DoctorID: uuid.New(),
		Start:    at(9, 0),
		End:      at(10, 0),
	})

	var conflictErr *apperrors.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflictErr.Code != apperrors.CodeAssignmentConflict {
		t.Errorf("code = %s, want %s", conflictErr.Code, apperrors.CodeAssignmentConflict)
	}
	if len(conflictErr.Conflicts) != 1 || conflictErr.Conflicts[0].ID != existing.ID {
		t.Errorf("conflict should name the existing assignment, got %+v", conflictErr.Conflicts)
	}
}

func TestCreateAssignmentDoctorConflict(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")
	doctor := uuid.New()

	mustCreateAssignment(t, f, uuid.New(), doctor, at(8, 0), at(12, 0))

	_, err := f.svc.Create(context.Background(), f.user, &models.AssignmentRequest{
		BoxID:    uuid.New(),
		DoctorID: doctor,
		Start:    at(11, 0),
		End:      at(13, 0),
	})

	var conflictErr *apperrors.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictError for doctor overlap, got %v", err)
	}
}

func TestCreateAssignmentAdjacentWindows(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")
	box, doctor := uuid.New(), uuid.New()

	mustCreateAssignment(t, f, box, doctor, at(8, 0), at(12, 0))
	// Half-open semantics: a window starting exactly at the other's end is
	// not a conflict.
	mustCreateAssignment(t, f, box, doctor, at(12, 0), at(16, 0))
}

func TestCreateAssignmentInvalidWindow(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")

	_, err := f.svc.Create(context.Background(), f.user, &models.AssignmentRequest{
		BoxID:    uuid.New(),
		DoctorID: uuid.New(),
		Start:    at(16, 0),
		End:      at(8, 0),
	})

	var validationErr *apperrors.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateAssignmentPermissionGate(t *testing.T) {
	f := newAssignmentFixture(t) // no roles bound

	_, err := f.svc.Create(context.Background(), f.user, &models.AssignmentRequest{
		BoxID:    uuid.New(),
		DoctorID: uuid.New(),
		Start:    at(8, 0),
		End:      at(16, 0),
	})

	var authErr *apperrors.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if len(f.assignments.items) != 0 {
		t.Error("rejected create must not write anything")
	}
}

func TestUpdateAssignmentNoSelfConflict(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")

	a := mustCreateAssignment(t, f, uuid.New(), uuid.New(), at(8, 0), at(16, 0))

	newEnd := at(17, 0)
	updated, err := f.svc.Update(context.Background(), f.user, a.ID, &models.AssignmentPatch{End: &newEnd})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.End.Equal(newEnd) {
		t.Errorf("end = %v, want %v", updated.End, newEnd)
	}
}

func TestUpdateAssignmentRederivesDate(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")

	a := mustCreateAssignment(t, f, uuid.New(), uuid.New(), at(8, 0), at(16, 0))

	newStart := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)
	newEnd := time.Date(2025, 3, 11, 16, 0, 0, 0, time.UTC)
	updated, err := f.svc.Update(context.Background(), f.user, a.ID, &models.AssignmentPatch{Start: &newStart, End: &newEnd})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Date != "2025-03-11" {
		t.Errorf("date = %s, want 2025-03-11", updated.Date)
	}
}

func TestUpdateAssignmentShrinkOrphansAppointments(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")

	a := mustCreateAssignment(t, f, uuid.New(), uuid.New(), at(8, 0), at(16, 0))
	child := models.Appointment{
		ID:           uuid.New(),
		TenantID:     f.user.TenantID,
		AssignmentID: a.ID,
		Start:        at(9, 0),
		End:          at(9, 30),
		PatientName:  "A. Patient",
	}
	f.appointments.items[child.ID] = child

	newEnd := at(8, 30)
	_, err := f.svc.Update(context.Background(), f.user, a.ID, &models.AssignmentPatch{End: &newEnd})

	var conflictErr *apperrors.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("shrinking past a child appointment must fail, got %v", err)
	}
	if len(conflictErr.Conflicts) != 1 || conflictErr.Conflicts[0].Detail != "A. Patient" {
		t.Errorf("conflict should name the orphaned appointment, got %+v", conflictErr.Conflicts)
	}
}

func TestDeleteAssignmentWithChildren(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")

	a := mustCreateAssignment(t, f, uuid.New(), uuid.New(), at(8, 0), at(16, 0))
	child := models.Appointment{
		ID:           uuid.New(),
		TenantID:     f.user.TenantID,
		AssignmentID: a.ID,
		Start:        at(9, 0),
		End:          at(9, 30),
	}
	f.appointments.items[child.ID] = child

	err := f.svc.Delete(context.Background(), f.user, a.ID)
	var conflictErr *apperrors.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("deleting an assignment with appointments must fail, got %v", err)
	}
}

func TestDeleteAssignment(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")

	a := mustCreateAssignment(t, f, uuid.New(), uuid.New(), at(8, 0), at(16, 0))
	if err := f.svc.Delete(context.Background(), f.user, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), f.user, a.ID); err == nil {
		t.Error("deleted assignment should not be readable")
	}
}

func TestAssignmentTenantIsolation(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")
	a := mustCreateAssignment(t, f, uuid.New(), uuid.New(), at(8, 0), at(16, 0))

	// A caller in another tenant, even with the same roles, sees nothing.
	stranger := models.UserContext{UserID: uuid.New(), TenantID: uuid.New()}
	resolver := grantRoles(t, stranger, "scheduler")
	strangerSvc := NewAssignmentService(f.assignments, f.appointments, resolver, &fakeAuditStore{})

	ctx := context.Background()
	var notFound *apperrors.NotFoundError

	if _, err := strangerSvc.Get(ctx, stranger, a.ID); !errors.As(err, &notFound) {
		t.Errorf("cross-tenant get: expected NotFoundError, got %v", err)
	}
	if _, err := strangerSvc.Update(ctx, stranger, a.ID, &models.AssignmentPatch{}); !errors.As(err, &notFound) {
		t.Errorf("cross-tenant update: expected NotFoundError, got %v", err)
	}
	if err := strangerSvc.Delete(ctx, stranger, a.ID); !errors.As(err, &notFound) {
		t.Errorf("cross-tenant delete: expected NotFoundError, got %v", err)
	}
}

func TestListAssignmentsByFilter(t *testing.T) {
	f := newAssignmentFixture(t, "scheduler")
	box, doctor := uuid.New(), uuid.New()

	mustCreateAssignment(t, f, box, doctor, at(8, 0), at(12, 0))
	mustCreateAssignment(t, f, uuid.New(), uuid.New(), at(8, 0), at(12, 0))

	ctx := context.Background()

	byBox, err := f.svc.List(ctx, f.user, models.AssignmentFilter{BoxID: &box})
	if err != nil {
		t.Fatalf("List by box: %v", err)
	}
	if len(byBox) != 1 {
		t.Errorf("by box: got %d assignments, want 1", len(byBox))
	}

	byDate, err := f.svc.List(ctx, f.user, models.AssignmentFilter{Date: "2025-03-10"})
	if err != nil {
		t.Fatalf("List by date: %v", err)
	}
	if len(byDate) != 2 {
		t.Errorf("by date: got %d assignments, want 2", len(byDate))
	}
}

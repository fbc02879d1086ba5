package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/repository"
)

// In-memory store fakes. Transact runs the callback directly: the
// serialization the real stores provide is irrelevant to single-threaded
// tests.

type fakeAssignmentStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Assignment
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{items: make(map[uuid.UUID]models.Assignment)}
}

func (f *fakeAssignmentStore) Create(ctx context.Context, a *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[a.ID] = *a
	return nil
}

func (f *fakeAssignmentStore) Save(ctx context.Context, a *models.Assignment) error {
	return f.Create(ctx, a)
}

func (f *fakeAssignmentStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok || a.TenantID != tenantID {
		return apperrors.NotFound("assignment")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAssignmentStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok || a.TenantID != tenantID {
		return nil, apperrors.NotFound("assignment")
	}
	copied := a
	return &copied, nil
}

func (f *fakeAssignmentStore) ListByBox(ctx context.Context, tenantID, boxID uuid.UUID) ([]models.Assignment, error) {
	return f.filtered(func(a models.Assignment) bool {
		return a.TenantID == tenantID && a.BoxID == boxID
	}), nil
}

func (f *fakeAssignmentStore) ListByDoctor(ctx context.Context, tenantID, doctorID uuid.UUID) ([]models.Assignment, error) {
	return f.filtered(func(a models.Assignment) bool {
		return a.TenantID == tenantID && a.DoctorID == doctorID
	}), nil
}

func (f *fakeAssignmentStore) ListByDate(ctx context.Context, tenantID uuid.UUID, date string) ([]models.Assignment, error) {
	return f.filtered(func(a models.Assignment) bool {
		return a.TenantID == tenantID && a.Date == date
	}), nil
}

func (f *fakeAssignmentStore) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Assignment, error) {
	return f.filtered(func(a models.Assignment) bool {
		return a.TenantID == tenantID
	}), nil
}

func (f *fakeAssignmentStore) filtered(keep func(models.Assignment) bool) []models.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, a := range f.items {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (f *fakeAssignmentStore) LockResource(ctx context.Context, key string) error {
	return nil
}

func (f *fakeAssignmentStore) Transact(ctx context.Context, fn func(repository.AssignmentStore) error) error {
	return fn(f)
}

type fakeAppointmentStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Appointment
}

func newFakeAppointmentStore() *fakeAppointmentStore {
	return &fakeAppointmentStore{items: make(map[uuid.UUID]models.Appointment)}
}

func (f *fakeAppointmentStore) Create(ctx context.Context, a *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.items[a.ID]; exists {
		return fmt.Errorf("failed to create appointment: duplicate key value violates unique constraint \"appointments_pkey\"")
	}
	f.items[a.ID] = *a
	return nil
}

func (f *fakeAppointmentStore) Save(ctx context.Context, a *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[a.ID] = *a
	return nil
}

func (f *fakeAppointmentStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok || a.TenantID != tenantID {
		return apperrors.NotFound("appointment")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAppointmentStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok || a.TenantID != tenantID {
		return nil, apperrors.NotFound("appointment")
	}
	copied := a
	return &copied, nil
}

func (f *fakeAppointmentStore) ListByAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) ([]models.Appointment, error) {
	return f.List(ctx, tenantID, models.AppointmentFilter{AssignmentID: &assignmentID})
}

func (f *fakeAppointmentStore) List(ctx context.Context, tenantID uuid.UUID, filter models.AppointmentFilter) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.items {
		if a.TenantID != tenantID {
			continue
		}
		if filter.AssignmentID != nil && a.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.BoxID != nil && a.BoxID != *filter.BoxID {
			continue
		}
		if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.Date != "" && a.Date != filter.Date {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeAppointmentStore) LockResource(ctx context.Context, key string) error {
	return nil
}

func (f *fakeAppointmentStore) Transact(ctx context.Context, fn func(repository.AppointmentStore) error) error {
	return fn(f)
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (f *fakeAuditStore) Create(ctx context.Context, entry *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditStore) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AuditLog
	for _, e := range f.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeBoxStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Box
}

func newFakeBoxStore() *fakeBoxStore {
	return &fakeBoxStore{items: make(map[uuid.UUID]models.Box)}
}

func (f *fakeBoxStore) Create(ctx context.Context, b *models.Box) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[b.ID] = *b
	return nil
}

func (f *fakeBoxStore) Save(ctx context.Context, b *models.Box) error {
	return f.Create(ctx, b)
}

func (f *fakeBoxStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok || b.TenantID != tenantID {
		return apperrors.NotFound("box")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeBoxStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Box, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok || b.TenantID != tenantID {
		return nil, apperrors.NotFound("box")
	}
	copied := b
	return &copied, nil
}

func (f *fakeBoxStore) List(ctx context.Context, tenantID uuid.UUID) ([]models.Box, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Box
	for _, b := range f.items {
		if b.TenantID == tenantID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeDoctorStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Doctor
}

func newFakeDoctorStore() *fakeDoctorStore {
	return &fakeDoctorStore{items: make(map[uuid.UUID]models.Doctor)}
}

func (f *fakeDoctorStore) Create(ctx context.Context, d *models.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[d.ID] = *d
	return nil
}

func (f *fakeDoctorStore) Save(ctx context.Context, d *models.Doctor) error {
	return f.Create(ctx, d)
}

func (f *fakeDoctorStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok || d.TenantID != tenantID {
		return apperrors.NotFound("doctor")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeDoctorStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok || d.TenantID != tenantID {
		return nil, apperrors.NotFound("doctor")
	}
	copied := d
	return &copied, nil
}

func (f *fakeDoctorStore) List(ctx context.Context, tenantID uuid.UUID) ([]models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Doctor
	for _, d := range f.items {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

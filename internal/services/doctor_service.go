package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/box-scheduler/internal/apperrors"
	"github.com/clinicops/box-scheduler/internal/models"
	"github.com/clinicops/box-scheduler/internal/rbac"
	"github.com/clinicops/box-scheduler/internal/repository"
)

// DoctorService manages the doctor directory
type DoctorService struct {
	doctors  repository.DoctorStore
	resolver *rbac.Resolver
	audit    *auditor
}

// NewDoctorService creates a new doctor service
func NewDoctorService(doctors repository.DoctorStore, resolver *rbac.Resolver, audit repository.AuditStore) *DoctorService {
	return &DoctorService{doctors: doctors, resolver: resolver, audit: &auditor{store: audit}}
}

// Create registers a new doctor
func (s *DoctorService) Create(ctx context.Context, user models.UserContext, req *models.DoctorRequest) (created *models.Doctor, err error) {
	started := time.Now()
	defer func() {
		id := ""
		if created != nil {
			id = created.ID.String()
		}
		s.audit.record(ctx, user, "doctor.create", "doctor", id, started, err)
	}()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionDoctorsWrite); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, apperrors.Validation("name is required")
	}

	d := &models.Doctor{
		ID:          uuid.New(),
		TenantID:    user.TenantID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		SpecialtyID: req.SpecialtyID,
		Status:      req.Status,
	}
	if d.Status == "" {
		d.Status = models.DoctorStatusOnDuty
	}
	if err = s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update applies the non-empty request fields over the stored doctor
func (s *DoctorService) Update(ctx context.Context, user models.UserContext, id uuid.UUID, req *models.DoctorRequest) (updated *models.Doctor, err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "doctor.update", "doctor", id.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionDoctorsWrite); err != nil {
		return nil, err
	}

	d, err := s.doctors.GetByID(ctx, user.TenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		d.Name = req.Name
	}
	if req.Email != "" {
		d.Email = req.Email
	}
	if req.Phone != "" {
		d.Phone = req.Phone
	}
	if req.SpecialtyID != uuid.Nil {
		d.SpecialtyID = req.SpecialtyID
	}
	if req.Status != "" {
		d.Status = req.Status
	}

	if err = s.doctors.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete hard-deletes a doctor
func (s *DoctorService) Delete(ctx context.Context, user models.UserContext, id uuid.UUID) (err error) {
	started := time.Now()
	defer func() { s.audit.record(ctx, user, "doctor.delete", "doctor", id.String(), started, err) }()

	if err = requirePermission(ctx, s.resolver, user, models.PermissionDoctorsWrite); err != nil {
		return err
	}
	return s.doctors.Delete(ctx, user.TenantID, id)
}

// Get retrieves one doctor
func (s *DoctorService) Get(ctx context.Context, user models.UserContext, id uuid.UUID) (*models.Doctor, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionDoctorsRead); err != nil {
		return nil, err
	}
	return s.doctors.GetByID(ctx, user.TenantID, id)
}

// List retrieves all doctors of the caller's tenant
func (s *DoctorService) List(ctx context.Context, user models.UserContext) ([]models.Doctor, error) {
	if err := requirePermission(ctx, s.resolver, user, models.PermissionDoctorsRead); err != nil {
		return nil, err
	}
	return s.doctors.List(ctx, user.TenantID)
}

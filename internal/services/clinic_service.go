package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
)

// ClinicService handles business logic for clinic management
type ClinicService struct {
	clinicRepo ClinicStore
	audit      *auditor
}

// NewClinicService creates a new clinic service
func NewClinicService(clinicRepo ClinicStore, auditRepo AuditStore) *ClinicService {
	return &ClinicService{
		clinicRepo: clinicRepo,
		audit:      &auditor{repo: auditRepo},
	}
}

// List returns the clinics visible to the caller
func (s *ClinicService) List(ctx context.Context, caller policy.Caller) ([]models.Clinic, error) {
	filter := policy.ScopeFilter(caller, policy.ResourceClinic, policy.FilterOptions{})
	return s.clinicRepo.List(ctx, filter)
}

// Get returns a single clinic after authorization
func (s *ClinicService) Get(ctx context.Context, caller policy.Caller, id uuid.UUID) (*models.Clinic, error) {
	clinic, err := s.clinicRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "clinic")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourceClinic,
		Target:   &policy.Target{ID: clinic.ID},
	})
	if !decision.Allowed {
		return nil, denied(decision)
	}

	return clinic, nil
}

// Create creates a new clinic (superadmin only)
func (s *ClinicService) Create(ctx context.Context, caller policy.Caller, req *models.ClinicRequest) (*models.Clinic, error) {
	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceClinic,
		Proposed: &policy.Proposed{},
	})
	s.audit.record(ctx, caller, "clinic.create", policy.ResourceClinic, uuid.Nil, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	clinic := &models.Clinic{
		Name:         req.Name,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		IsActive:     true,
	}
	if req.IsActive != nil {
		clinic.IsActive = *req.IsActive
	}

	if err := s.clinicRepo.Create(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}

	return clinic, nil
}

// Update updates a clinic (superadmin only)
func (s *ClinicService) Update(ctx context.Context, caller policy.Caller, id uuid.UUID, req *models.ClinicRequest) (*models.Clinic, error) {
	clinic, err := s.clinicRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "clinic")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceClinic,
		Target:   &policy.Target{ID: clinic.ID},
	})
	s.audit.record(ctx, caller, "clinic.update", policy.ResourceClinic, id, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	clinic.Name = req.Name
	clinic.Address = req.Address
	clinic.ContactEmail = req.ContactEmail
	clinic.ContactPhone = req.ContactPhone
	if req.IsActive != nil {
		clinic.IsActive = *req.IsActive
	}

	if err := s.clinicRepo.Update(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to update clinic: %w", err)
	}

	return clinic, nil
}

// Delete deletes a clinic. Blocked while the clinic still owns branches or
// users; the cardinality check belongs to this layer, not the policy engine.
func (s *ClinicService) Delete(ctx context.Context, caller policy.Caller, id uuid.UUID) error {
	clinic, err := s.clinicRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "clinic")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbDelete,
		Resource: policy.ResourceClinic,
		Target:   &policy.Target{ID: clinic.ID},
	})
	s.audit.record(ctx, caller, "clinic.delete", policy.ResourceClinic, id, decision)
	if !decision.Allowed {
		return denied(decision)
	}

	branches, users, err := s.clinicRepo.CountDependents(ctx, id)
	if err != nil {
		return err
	}
	if branches > 0 || users > 0 {
		return &ErrConflict{Message: "clinic still has branches or users attached"}
	}

	return s.clinicRepo.Delete(ctx, id)
}

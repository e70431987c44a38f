package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
	"gorm.io/gorm"
)

// BranchService handles business logic for branch management
type BranchService struct {
	branchRepo BranchStore
	clinicRepo ClinicStore
	audit      *auditor
}

// NewBranchService creates a new branch service
func NewBranchService(branchRepo BranchStore, clinicRepo ClinicStore, auditRepo AuditStore) *BranchService {
	return &BranchService{
		branchRepo: branchRepo,
		clinicRepo: clinicRepo,
		audit:      &auditor{repo: auditRepo},
	}
}

func branchTarget(b *models.Branch) *policy.Target {
	return &policy.Target{ID: b.ID, ClinicID: b.ClinicID}
}

// List returns the branches visible to the caller
func (s *BranchService) List(ctx context.Context, caller policy.Caller) ([]models.Branch, error) {
	filter := policy.ScopeFilter(caller, policy.ResourceBranch, policy.FilterOptions{})
	return s.branchRepo.List(ctx, filter)
}

// Get returns a single branch after authorization
func (s *BranchService) Get(ctx context.Context, caller policy.Caller, id uuid.UUID) (*models.Branch, error) {
	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "branch")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourceBranch,
		Target:   branchTarget(branch),
	})
	if !decision.Allowed {
		return nil, denied(decision)
	}

	return branch, nil
}

// Create creates a new branch under an existing clinic
func (s *BranchService) Create(ctx context.Context, caller policy.Caller, req *models.BranchRequest) (*models.Branch, error) {
	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceBranch,
		Proposed: &policy.Proposed{ClinicID: req.ClinicID},
	})
	s.audit.record(ctx, caller, "branch.create", policy.ResourceBranch, uuid.Nil, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	// The owning clinic must exist; a branch never points at a missing clinic.
	if _, err := s.clinicRepo.GetByID(ctx, req.ClinicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ErrConflict{Message: "clinic does not exist"}
		}
		return nil, fmt.Errorf("failed to verify clinic: %w", err)
	}

	branch := &models.Branch{
		ClinicID:     req.ClinicID,
		Name:         req.Name,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		IsActive:     true,
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	return branch, nil
}

// Update updates a branch. Moving it to another clinic requires superadmin
// and an existing destination clinic.
func (s *BranchService) Update(ctx context.Context, caller policy.Caller, id uuid.UUID, req *models.BranchRequest) (*models.Branch, error) {
	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "branch")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceBranch,
		Target:   branchTarget(branch),
		Proposed: &policy.Proposed{ClinicID: req.ClinicID},
	})
	s.audit.record(ctx, caller, "branch.update", policy.ResourceBranch, id, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	branch.Name = req.Name
	branch.Address = req.Address
	branch.ContactEmail = req.ContactEmail
	branch.ContactPhone = req.ContactPhone
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	if req.ClinicID != uuid.Nil && req.ClinicID != branch.ClinicID {
		if _, err := s.clinicRepo.GetByID(ctx, req.ClinicID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ErrConflict{Message: "clinic does not exist"}
			}
			return nil, fmt.Errorf("failed to verify clinic: %w", err)
		}
		branch.ClinicID = req.ClinicID
	}

	if err := s.branchRepo.Update(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}

	return branch, nil
}

// Delete deletes a branch. Blocked while the branch still has users or
// patients attached.
func (s *BranchService) Delete(ctx context.Context, caller policy.Caller, id uuid.UUID) error {
	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "branch")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbDelete,
		Resource: policy.ResourceBranch,
		Target:   branchTarget(branch),
	})
	s.audit.record(ctx, caller, "branch.delete", policy.ResourceBranch, id, decision)
	if !decision.Allowed {
		return denied(decision)
	}

	users, patients, err := s.branchRepo.CountDependents(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 || patients > 0 {
		return &ErrConflict{Message: "branch still has users or patients attached"}
	}

	return s.branchRepo.Delete(ctx, id)
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/cache"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles business logic for staff management
type UserService struct {
	userRepo   UserStore
	branchRepo BranchStore
	clinicRepo ClinicStore
	cache      cache.Cache
	audit      *auditor
}

// NewUserService creates a new user service
func NewUserService(
	userRepo UserStore,
	branchRepo BranchStore,
	clinicRepo ClinicStore,
	cache cache.Cache,
	auditRepo AuditStore,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		clinicRepo: clinicRepo,
		cache:      cache,
		audit:      &auditor{repo: auditRepo},
	}
}

func userTarget(u *models.User) *policy.Target {
	target := &policy.Target{ID: u.ID, CurrentRole: u.Role}
	if u.ClinicID != nil {
		target.ClinicID = *u.ClinicID
	}
	if u.BranchID != nil {
		target.BranchID = *u.BranchID
	}
	return target
}

// proposedFromRequest builds the policy input from a payload, resolving the
// proposed branch's owning clinic so the engine can check tenant consistency
// without touching storage itself.
func (s *UserService) proposedFromRequest(ctx context.Context, req *models.UserRequest) (*policy.Proposed, error) {
	proposed := &policy.Proposed{Role: req.Role}
	if req.ClinicID != nil {
		proposed.ClinicID = *req.ClinicID
	}
	if req.BranchID != nil {
		proposed.BranchID = *req.BranchID
		branch, err := s.branchRepo.GetByID(ctx, *req.BranchID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ErrConflict{Message: "branch does not exist"}
			}
			return nil, fmt.Errorf("failed to verify branch: %w", err)
		}
		proposed.BranchClinicID = branch.ClinicID
	}
	return proposed, nil
}

// List returns the users visible to the caller
func (s *UserService) List(ctx context.Context, caller policy.Caller) ([]models.User, error) {
	filter := policy.ScopeFilter(caller, policy.ResourceUser, policy.FilterOptions{})
	return s.userRepo.List(ctx, filter)
}

// Get returns a single user after authorization
func (s *UserService) Get(ctx context.Context, caller policy.Caller, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourceUser,
		Target:   userTarget(user),
	})
	if !decision.Allowed {
		return nil, denied(decision)
	}

	return user, nil
}

// Create creates a new staff user within the caller's tenant scope
func (s *UserService) Create(ctx context.Context, caller policy.Caller, req *models.UserRequest) (*models.User, error) {
	proposed, err := s.proposedFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: proposed,
	})
	s.audit.record(ctx, caller, "user.create", policy.ResourceUser, uuid.Nil, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	if req.ClinicID != nil {
		if _, err := s.clinicRepo.GetByID(ctx, *req.ClinicID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ErrConflict{Message: "clinic does not exist"}
			}
			return nil, fmt.Errorf("failed to verify clinic: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: string(hashed),
		Role:           req.Role,
		ClinicID:       req.ClinicID,
		BranchID:       req.BranchID,
		IsActive:       true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Update updates a user within the caller's tenant scope
func (s *UserService) Update(ctx context.Context, caller policy.Caller, id uuid.UUID, req *models.UserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}

	proposed, err := s.proposedFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   userTarget(user),
		Proposed: proposed,
	})
	s.audit.record(ctx, caller, "user.update", policy.ResourceUser, id, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.ClinicID != nil {
		user.ClinicID = req.ClinicID
	}
	if req.BranchID != nil {
		user.BranchID = req.BranchID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// Drop any cached identity so the next request sees the new attachment.
	s.cache.Delete(ctx, callerCacheKey(user.ID))

	return user, nil
}

// Delete deletes a user within the caller's tenant scope
func (s *UserService) Delete(ctx context.Context, caller policy.Caller, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "user")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbDelete,
		Resource: policy.ResourceUser,
		Target:   userTarget(user),
	})
	s.audit.record(ctx, caller, "user.delete", policy.ResourceUser, id, decision)
	if !decision.Allowed {
		return denied(decision)
	}

	patients, err := s.userRepo.CountPatients(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count patients: %w", err)
	}
	if patients > 0 {
		return &ErrConflict{Message: "user has patient records and cannot be deleted"}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.cache.Delete(ctx, callerCacheKey(id))
	return nil
}

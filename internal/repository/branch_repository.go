package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/database"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
)

// BranchRepository handles branch database operations
type BranchRepository struct{}

// NewBranchRepository creates a new branch repository
func NewBranchRepository() *BranchRepository {
	return &BranchRepository{}
}

// Create creates a new branch
func (r *BranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	if err := database.DB.WithContext(ctx).Create(branch).Error; err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	return nil
}

// GetByID retrieves a branch by ID
func (r *BranchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := database.DB.WithContext(ctx).Preload("Clinic").Where("id = ?", id).First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// List retrieves branches visible through the given scope filter
func (r *BranchRepository) List(ctx context.Context, filter policy.Filter) ([]models.Branch, error) {
	q := scopeBranches(database.DB.WithContext(ctx).Model(&models.Branch{}), filter)

	var branches []models.Branch
	if err := q.Preload("Clinic").Order("created_at ASC").Find(&branches).Error; err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}

// Update updates a branch
func (r *BranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	if err := database.DB.WithContext(ctx).Save(branch).Error; err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}
	return nil
}

// Delete soft deletes a branch
func (r *BranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := database.DB.WithContext(ctx).Delete(&models.Branch{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	return nil
}

// Count returns the number of branches visible through the given scope filter
func (r *BranchRepository) Count(ctx context.Context, filter policy.Filter) (int64, error) {
	q := scopeBranches(database.DB.WithContext(ctx).Model(&models.Branch{}), filter)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count branches: %w", err)
	}
	return count, nil
}

// CountDependents returns the number of users and patients still attached to
// a branch. Deletion stays blocked while either is non-zero.
func (r *BranchRepository) CountDependents(ctx context.Context, id uuid.UUID) (users int64, patients int64, err error) {
	db := database.DB.WithContext(ctx)
	if err = db.Model(&models.User{}).Where("branch_id = ?", id).Count(&users).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err = db.Model(&models.Patient{}).Where("branch_id = ?", id).Count(&patients).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return users, patients, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/database"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
)

// ClinicRepository handles clinic database operations
type ClinicRepository struct{}

// NewClinicRepository creates a new clinic repository
func NewClinicRepository() *ClinicRepository {
	return &ClinicRepository{}
}

// Create creates a new clinic
func (r *ClinicRepository) Create(ctx context.Context, clinic *models.Clinic) error {
	if err := database.DB.WithContext(ctx).Create(clinic).Error; err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

// GetByID retrieves a clinic by ID
func (r *ClinicRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error) {
	var clinic models.Clinic
	if err := database.DB.WithContext(ctx).Where("id = ?", id).First(&clinic).Error; err != nil {
		return nil, err
	}
	return &clinic, nil
}

// List retrieves clinics visible through the given scope filter
func (r *ClinicRepository) List(ctx context.Context, filter policy.Filter) ([]models.Clinic, error) {
	q := database.DB.WithContext(ctx).Model(&models.Clinic{})
	if filter.DenyAll {
		q = matchNothing(q)
	} else {
		for field, value := range filter.Conditions {
			if field == policy.FieldID {
				q = q.Where("id = ?", value)
			}
		}
	}

	var clinics []models.Clinic
	if err := q.Order("created_at ASC").Find(&clinics).Error; err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

// Update updates a clinic
func (r *ClinicRepository) Update(ctx context.Context, clinic *models.Clinic) error {
	if err := database.DB.WithContext(ctx).Save(clinic).Error; err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}
	return nil
}

// Delete soft deletes a clinic
func (r *ClinicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := database.DB.WithContext(ctx).Delete(&models.Clinic{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}
	return nil
}

// Count returns the number of clinics visible through the given scope filter
func (r *ClinicRepository) Count(ctx context.Context, filter policy.Filter) (int64, error) {
	q := database.DB.WithContext(ctx).Model(&models.Clinic{})
	if filter.DenyAll {
		q = matchNothing(q)
	} else {
		for field, value := range filter.Conditions {
			if field == policy.FieldID {
				q = q.Where("id = ?", value)
			}
		}
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clinics: %w", err)
	}
	return count, nil
}

// CountDependents returns the number of branches and users still attached to
// a clinic. Deletion stays blocked while either is non-zero.
func (r *ClinicRepository) CountDependents(ctx context.Context, id uuid.UUID) (branches int64, users int64, err error) {
	db := database.DB.WithContext(ctx)
	if err = db.Model(&models.Branch{}).Where("clinic_id = ?", id).Count(&branches).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count branches: %w", err)
	}
	if err = db.Model(&models.User{}).Where("clinic_id = ?", id).Count(&users).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return branches, users, nil
}

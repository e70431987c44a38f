package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/database"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
)

// InvestigationRepository handles investigation database operations
type InvestigationRepository struct{}

// NewInvestigationRepository creates a new investigation repository
func NewInvestigationRepository() *InvestigationRepository {
	return &InvestigationRepository{}
}

// Create creates a new investigation
func (r *InvestigationRepository) Create(ctx context.Context, inv *models.Investigation) error {
	if err := database.DB.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create investigation: %w", err)
	}
	return nil
}

// GetByID retrieves an investigation with its parent patient and branch
func (r *InvestigationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Investigation, error) {
	var inv models.Investigation
	if err := database.DB.WithContext(ctx).
		Preload("Patient").Preload("Patient.Branch").
		Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListByPatient retrieves a patient's investigations visible through the
// given scope filter
func (r *InvestigationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, filter policy.Filter) ([]models.Investigation, error) {
	q := scopeInvestigations(database.DB.WithContext(ctx).Model(&models.Investigation{}), filter).
		Where("patient_id = ?", patientID)

	var invs []models.Investigation
	if err := q.Order("date DESC").Find(&invs).Error; err != nil {
		return nil, fmt.Errorf("failed to list investigations: %w", err)
	}
	return invs, nil
}

// Count returns the number of investigations visible through the given scope
// filter
func (r *InvestigationRepository) Count(ctx context.Context, filter policy.Filter) (int64, error) {
	q := scopeInvestigations(database.DB.WithContext(ctx).Model(&models.Investigation{}), filter)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count investigations: %w", err)
	}
	return count, nil
}

// CountPendingFollowUps returns the number of investigations within the scope
// filter that still need a follow-up scheduled after now
func (r *InvestigationRepository) CountPendingFollowUps(ctx context.Context, filter policy.Filter, now time.Time) (int64, error) {
	q := scopeInvestigations(database.DB.WithContext(ctx).Model(&models.Investigation{}), filter).
		Where("follow_up_needed = ? AND follow_up_date > ?", true, now)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending follow-ups: %w", err)
	}
	return count, nil
}

// Update updates an investigation
func (r *InvestigationRepository) Update(ctx context.Context, inv *models.Investigation) error {
	if err := database.DB.WithContext(ctx).Save(inv).Error; err != nil {
		return fmt.Errorf("failed to update investigation: %w", err)
	}
	return nil
}

// Delete soft deletes an investigation
func (r *InvestigationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := database.DB.WithContext(ctx).Delete(&models.Investigation{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete investigation: %w", err)
	}
	return nil
}

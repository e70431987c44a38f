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

// PatientRepository handles patient database operations
type PatientRepository struct{}

// NewPatientRepository creates a new patient repository
func NewPatientRepository() *PatientRepository {
	return &PatientRepository{}
}

// Create creates a new patient
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if err := database.DB.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// GetByID retrieves a patient by ID with its owning branch
func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	var patient models.Patient
	if err := database.DB.WithContext(ctx).
		Preload("Branch").Preload("Investigations").
		Where("id = ?", id).First(&patient).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// List retrieves patients visible through the given scope filter
func (r *PatientRepository) List(ctx context.Context, filter policy.Filter) ([]models.Patient, error) {
	q := scopePatients(database.DB.WithContext(ctx).Model(&models.Patient{}), filter)

	var patients []models.Patient
	if err := q.Preload("Investigations").
		Order("created_at DESC").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// Update updates a patient
func (r *PatientRepository) Update(ctx context.Context, patient *models.Patient) error {
	if err := database.DB.WithContext(ctx).Save(patient).Error; err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// Count returns the number of patients visible through the given scope filter
func (r *PatientRepository) Count(ctx context.Context, filter policy.Filter) (int64, error) {
	q := scopePatients(database.DB.WithContext(ctx).Model(&models.Patient{}), filter)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}

// CountCreatedSince returns the number of patients registered at or after
// since, within the given scope filter
func (r *PatientRepository) CountCreatedSince(ctx context.Context, filter policy.Filter, since time.Time) (int64, error) {
	q := scopePatients(database.DB.WithContext(ctx).Model(&models.Patient{}), filter).
		Where("created_at >= ?", since)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent patients: %w", err)
	}
	return count, nil
}

// Delete soft deletes a patient and its investigations
func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := database.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("patient_id = ?", id).Delete(&models.Investigation{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete investigations: %w", err)
	}

	if err := tx.Delete(&models.Patient{}, "id = ?", id).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	return tx.Commit().Error
}

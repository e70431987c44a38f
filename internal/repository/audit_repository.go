package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/database"
	"github.com/otcheredev/clinic-management/internal/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct{}

// NewAuditRepository creates a new audit repository
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Create creates a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if err := database.DB.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// GetByClinicID retrieves audit logs for a clinic
func (r *AuditRepository) GetByClinicID(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query := database.DB.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}

	return logs, nil
}

// GetByResourceID retrieves audit logs for a specific resource
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := database.DB.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	return logs, nil
}

package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
)

// AuditService exposes the audit trail to administrators. Only superadmins
// and clinic admins can consult it; clinic admins are pinned to their own
// clinic regardless of the query.
type AuditService struct {
	repo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// List returns audit entries for a clinic, newest first. A non-empty
// resourceID narrows the query to a single resource's history and is
// reserved for superadmins, since resource history crosses clinic lines.
func (s *AuditService) List(ctx context.Context, caller policy.Caller, clinicID uuid.UUID, resourceID string, limit, offset int) ([]models.AuditLog, error) {
	switch caller.Role {
	case policy.RoleSuperAdmin:
		if resourceID != "" {
			return s.repo.GetByResourceID(ctx, resourceID)
		}
		if clinicID == uuid.Nil {
			return nil, &ErrConflict{Message: "clinic_id or resource_id is required"}
		}
		return s.repo.GetByClinicID(ctx, clinicID, limit, offset)

	case policy.RoleClinicAdmin:
		if !caller.Scoped() {
			return nil, denied(policy.Decision{Reason: policy.ReasonUnscoped})
		}
		if resourceID != "" {
			return nil, denied(policy.Decision{Reason: policy.ReasonForbidden})
		}
		return s.repo.GetByClinicID(ctx, caller.ClinicID, limit, offset)
	}

	return nil, denied(policy.Decision{Reason: policy.ReasonForbidden})
}

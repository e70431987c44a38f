package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
)

// Store interfaces consumed by the services. The gorm-backed repositories in
// internal/repository satisfy them; tests substitute in-memory fakes.

// ClinicStore persists clinics.
type ClinicStore interface {
	Create(ctx context.Context, clinic *models.Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Clinic, error)
	List(ctx context.Context, filter policy.Filter) ([]models.Clinic, error)
	Update(ctx context.Context, clinic *models.Clinic) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountDependents(ctx context.Context, id uuid.UUID) (branches int64, users int64, err error)
	Count(ctx context.Context, filter policy.Filter) (int64, error)
}

// BranchStore persists branches.
type BranchStore interface {
	Create(ctx context.Context, branch *models.Branch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	List(ctx context.Context, filter policy.Filter) ([]models.Branch, error)
	Update(ctx context.Context, branch *models.Branch) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountDependents(ctx context.Context, id uuid.UUID) (users int64, patients int64, err error)
	Count(ctx context.Context, filter policy.Filter) (int64, error)
}

// UserStore persists staff users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter policy.Filter) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountPatients(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context, filter policy.Filter) (int64, error)
}

// PatientStore persists patient records.
type PatientStore interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error)
	List(ctx context.Context, filter policy.Filter) ([]models.Patient, error)
	Update(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter policy.Filter) (int64, error)
	CountCreatedSince(ctx context.Context, filter policy.Filter, since time.Time) (int64, error)
}

// InvestigationStore persists investigations.
type InvestigationStore interface {
	Create(ctx context.Context, inv *models.Investigation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Investigation, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, filter policy.Filter) ([]models.Investigation, error)
	Update(ctx context.Context, inv *models.Investigation) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter policy.Filter) (int64, error)
	CountPendingFollowUps(ctx context.Context, filter policy.Filter, now time.Time) (int64, error)
}

// AuditStore persists and queries the audit trail.
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	GetByClinicID(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceID string) ([]models.AuditLog, error)
}

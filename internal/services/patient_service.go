package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
)

// PatientService handles business logic for patient records and their
// investigations
type PatientService struct {
	patientRepo PatientStore
	invRepo     InvestigationStore
	audit       *auditor
}

// NewPatientService creates a new patient service
func NewPatientService(
	patientRepo PatientStore,
	invRepo InvestigationStore,
	auditRepo AuditStore,
) *PatientService {
	return &PatientService{
		patientRepo: patientRepo,
		invRepo:     invRepo,
		audit:       &auditor{repo: auditRepo},
	}
}

func patientTarget(p *models.Patient) *policy.Target {
	target := &policy.Target{
		ID:          p.ID,
		BranchID:    p.BranchID,
		OwnerUserID: p.UserID,
	}
	if p.Branch != nil {
		target.ClinicID = p.Branch.ClinicID
	}
	return target
}

func investigationTarget(inv *models.Investigation) *policy.Target {
	target := &policy.Target{ID: inv.ID}
	if inv.Patient != nil {
		target.BranchID = inv.Patient.BranchID
		target.OwnerUserID = inv.Patient.UserID
		if inv.Patient.Branch != nil {
			target.ClinicID = inv.Patient.Branch.ClinicID
		}
	}
	return target
}

// List returns the patients visible to the caller. ownOnly narrows a doctor
// to the records they created instead of the whole branch.
func (s *PatientService) List(ctx context.Context, caller policy.Caller, ownOnly bool) ([]models.Patient, error) {
	filter := policy.ScopeFilter(caller, policy.ResourcePatient, policy.FilterOptions{IncludeOwnerFilter: ownOnly})
	return s.patientRepo.List(ctx, filter)
}

// Get returns a single patient after authorization
func (s *PatientService) Get(ctx context.Context, caller policy.Caller, id uuid.UUID) (*models.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "patient")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourcePatient,
		Target:   patientTarget(patient),
	})
	if !decision.Allowed {
		return nil, denied(decision)
	}

	return patient, nil
}

// Create registers a new patient. The record is anchored to the caller: the
// creating user and their branch are fixed here, never taken from the payload.
func (s *PatientService) Create(ctx context.Context, caller policy.Caller, req *models.PatientRequest) (*models.Patient, error) {
	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourcePatient,
		Proposed: &policy.Proposed{},
	})
	s.audit.record(ctx, caller, "patient.create", policy.ResourcePatient, uuid.Nil, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	patient := &models.Patient{
		UserID:           caller.UserID,
		BranchID:         caller.BranchID,
		Name:             req.Name,
		GuardianName:     req.GuardianName,
		Address:          req.Address,
		Age:              req.Age,
		Sex:              req.Sex,
		Occupation:       req.Occupation,
		MobileNumber:     req.MobileNumber,
		ChiefComplaints:  req.ChiefComplaints,
		MedicalHistory:   req.MedicalHistory,
		PhysicalGenerals: req.PhysicalGenerals,
		MenstrualHistory: req.MenstrualHistory,
		FoodAndHabit:     req.FoodAndHabit,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	return patient, nil
}

// Update updates a patient record
func (s *PatientService) Update(ctx context.Context, caller policy.Caller, id uuid.UUID, req *models.PatientRequest) (*models.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "patient")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourcePatient,
		Target:   patientTarget(patient),
	})
	s.audit.record(ctx, caller, "patient.update", policy.ResourcePatient, id, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	patient.Name = req.Name
	patient.GuardianName = req.GuardianName
	patient.Address = req.Address
	patient.Age = req.Age
	patient.Sex = req.Sex
	patient.Occupation = req.Occupation
	patient.MobileNumber = req.MobileNumber
	patient.ChiefComplaints = req.ChiefComplaints
	if req.MedicalHistory != nil {
		patient.MedicalHistory = req.MedicalHistory
	}
	if req.PhysicalGenerals != nil {
		patient.PhysicalGenerals = req.PhysicalGenerals
	}
	if req.MenstrualHistory != nil {
		patient.MenstrualHistory = req.MenstrualHistory
	}
	if req.FoodAndHabit != nil {
		patient.FoodAndHabit = req.FoodAndHabit
	}

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	return patient, nil
}

// Delete deletes a patient record along with its investigations
func (s *PatientService) Delete(ctx context.Context, caller policy.Caller, id uuid.UUID) error {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "patient")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbDelete,
		Resource: policy.ResourcePatient,
		Target:   patientTarget(patient),
	})
	s.audit.record(ctx, caller, "patient.delete", policy.ResourcePatient, id, decision)
	if !decision.Allowed {
		return denied(decision)
	}

	return s.patientRepo.Delete(ctx, id)
}

// ListInvestigations returns a patient's investigations, guarded by read
// access on the parent patient
func (s *PatientService) ListInvestigations(ctx context.Context, caller policy.Caller, patientID uuid.UUID) ([]models.Investigation, error) {
	if _, err := s.Get(ctx, caller, patientID); err != nil {
		return nil, err
	}

	filter := policy.ScopeFilter(caller, policy.ResourceInvestigation, policy.FilterOptions{})
	return s.invRepo.ListByPatient(ctx, patientID, filter)
}

// CreateInvestigation adds an investigation to a patient. Visibility follows
// the parent patient's branch.
func (s *PatientService) CreateInvestigation(ctx context.Context, caller policy.Caller, patientID uuid.UUID, req *models.InvestigationRequest) (*models.Investigation, error) {
	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, notFoundOr(err, "patient")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceInvestigation,
		Proposed: &policy.Proposed{BranchID: patient.BranchID},
	})
	s.audit.record(ctx, caller, "investigation.create", policy.ResourceInvestigation, uuid.Nil, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	inv := &models.Investigation{
		PatientID:    patientID,
		Type:         req.Type,
		Details:      req.Details,
		Date:         req.Date,
		FileURL:      req.FileURL,
		Doctor:       req.Doctor,
		FollowUpDate: req.FollowUpDate,
	}
	if req.FollowUpNeeded != nil {
		inv.FollowUpNeeded = *req.FollowUpNeeded
	}

	if err := s.invRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create investigation: %w", err)
	}

	return inv, nil
}

// GetInvestigation returns a single investigation after authorization
func (s *PatientService) GetInvestigation(ctx context.Context, caller policy.Caller, id uuid.UUID) (*models.Investigation, error) {
	inv, err := s.invRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "investigation")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourceInvestigation,
		Target:   investigationTarget(inv),
	})
	if !decision.Allowed {
		return nil, denied(decision)
	}

	return inv, nil
}

// UpdateInvestigation updates an investigation
func (s *PatientService) UpdateInvestigation(ctx context.Context, caller policy.Caller, id uuid.UUID, req *models.InvestigationRequest) (*models.Investigation, error) {
	inv, err := s.invRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "investigation")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceInvestigation,
		Target:   investigationTarget(inv),
	})
	s.audit.record(ctx, caller, "investigation.update", policy.ResourceInvestigation, id, decision)
	if !decision.Allowed {
		return nil, denied(decision)
	}

	inv.Type = req.Type
	inv.Details = req.Details
	if !req.Date.IsZero() {
		inv.Date = req.Date
	}
	inv.FileURL = req.FileURL
	inv.Doctor = req.Doctor
	if req.FollowUpNeeded != nil {
		inv.FollowUpNeeded = *req.FollowUpNeeded
	}
	if req.FollowUpDate != nil {
		inv.FollowUpDate = req.FollowUpDate
	}

	if err := s.invRepo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update investigation: %w", err)
	}

	return inv, nil
}

// DeleteInvestigation deletes an investigation
func (s *PatientService) DeleteInvestigation(ctx context.Context, caller policy.Caller, id uuid.UUID) error {
	inv, err := s.invRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "investigation")
	}

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbDelete,
		Resource: policy.ResourceInvestigation,
		Target:   investigationTarget(inv),
	})
	s.audit.record(ctx, caller, "investigation.delete", policy.ResourceInvestigation, id, decision)
	if !decision.Allowed {
		return denied(decision)
	}

	return s.invRepo.Delete(ctx, id)
}

package repository

import (
	"github.com/otcheredev/clinic-management/internal/database"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
	"gorm.io/gorm"
)

// Each repository translates the policy engine's declarative Filter into gorm
// predicates here. The engine itself never sees the database; the mapping
// from filter fields to columns (or joins) is this layer's contract.

// matchNothing forces an empty result set for deny-all filters.
func matchNothing(q *gorm.DB) *gorm.DB {
	return q.Where("1 = 0")
}

// branchesOfClinic is the subquery used wherever a filter reaches a clinic
// through the owning branch.
func branchesOfClinic(clinicID interface{}) *gorm.DB {
	return database.DB.Model(&models.Branch{}).Select("id").Where("clinic_id = ?", clinicID)
}

// scopeBranches applies filter to a branch query.
func scopeBranches(q *gorm.DB, filter policy.Filter) *gorm.DB {
	if filter.DenyAll {
		return matchNothing(q)
	}
	for field, value := range filter.Conditions {
		switch field {
		case policy.FieldID:
			q = q.Where("id = ?", value)
		case policy.FieldClinicID:
			q = q.Where("clinic_id = ?", value)
		}
	}
	return q
}

// scopeUsers applies filter to a user query.
func scopeUsers(q *gorm.DB, filter policy.Filter) *gorm.DB {
	if filter.DenyAll {
		return matchNothing(q)
	}
	for field, value := range filter.Conditions {
		switch field {
		case policy.FieldID:
			q = q.Where("id = ?", value)
		case policy.FieldClinicID:
			q = q.Where("clinic_id = ?", value)
		case policy.FieldBranchID:
			q = q.Where("branch_id = ?", value)
		}
	}
	return q
}

// scopePatients applies filter to a patient query. The clinic is reached
// through the owning branch.
func scopePatients(q *gorm.DB, filter policy.Filter) *gorm.DB {
	if filter.DenyAll {
		return matchNothing(q)
	}
	for field, value := range filter.Conditions {
		switch field {
		case policy.FieldID:
			q = q.Where("id = ?", value)
		case policy.FieldBranchID:
			q = q.Where("branch_id = ?", value)
		case policy.FieldUserID:
			q = q.Where("user_id = ?", value)
		case policy.FieldBranchClinicID:
			q = q.Where("branch_id IN (?)", branchesOfClinic(value))
		}
	}
	return q
}

// scopeInvestigations applies filter to an investigation query. All tenant
// fields live on the parent patient.
func scopeInvestigations(q *gorm.DB, filter policy.Filter) *gorm.DB {
	if filter.DenyAll {
		return matchNothing(q)
	}
	patients := func() *gorm.DB {
		return database.DB.Model(&models.Patient{}).Select("id")
	}
	for field, value := range filter.Conditions {
		switch field {
		case policy.FieldID:
			q = q.Where("id = ?", value)
		case policy.FieldBranchID:
			q = q.Where("patient_id IN (?)", patients().Where("branch_id = ?", value))
		case policy.FieldUserID:
			q = q.Where("patient_id IN (?)", patients().Where("user_id = ?", value))
		case policy.FieldBranchClinicID:
			q = q.Where("patient_id IN (?)", patients().Where("branch_id IN (?)", branchesOfClinic(value)))
		}
	}
	return q
}

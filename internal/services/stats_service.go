package services

import (
	"context"
	"fmt"
	"time"

	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/policy"
)

// recentWindow bounds the "recent activity" counters on the dashboard.
const recentWindow = 30 * 24 * time.Hour

// StatsService aggregates the role-scoped dashboard counters. Every count
// goes through the caller's scope filter, so the numbers a user sees match
// the rows their lists would return.
type StatsService struct {
	clinicRepo  ClinicStore
	branchRepo  BranchStore
	userRepo    UserStore
	patientRepo PatientStore
	invRepo     InvestigationStore
}

// NewStatsService creates a new stats service
func NewStatsService(
	clinicRepo ClinicStore,
	branchRepo BranchStore,
	userRepo UserStore,
	patientRepo PatientStore,
	invRepo InvestigationStore,
) *StatsService {
	return &StatsService{
		clinicRepo:  clinicRepo,
		branchRepo:  branchRepo,
		userRepo:    userRepo,
		patientRepo: patientRepo,
		invRepo:     invRepo,
	}
}

// Dashboard returns the caller's dashboard counters. Superadmins get global
// totals, clinic and branch admins get their tenant's, and doctors get their
// own caseload (patient counts, recent cases, pending follow-up reports).
// Roles outside the tenant tiers get the zeroed card.
func (s *StatsService) Dashboard(ctx context.Context, caller policy.Caller) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	since := time.Now().Add(-recentWindow)

	switch caller.Role {
	case policy.RoleSuperAdmin:
		none := policy.Unrestricted()
		var err error
		if stats.UserCount, err = s.userRepo.Count(ctx, none); err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if stats.PatientCount, err = s.patientRepo.Count(ctx, none); err != nil {
			return nil, fmt.Errorf("failed to count patients: %w", err)
		}
		if stats.InvestigationCount, err = s.invRepo.Count(ctx, none); err != nil {
			return nil, fmt.Errorf("failed to count investigations: %w", err)
		}
		if stats.ClinicCount, err = s.clinicRepo.Count(ctx, none); err != nil {
			return nil, fmt.Errorf("failed to count clinics: %w", err)
		}
		if stats.BranchCount, err = s.branchRepo.Count(ctx, none); err != nil {
			return nil, fmt.Errorf("failed to count branches: %w", err)
		}
		if stats.RecentActivity, err = s.patientRepo.CountCreatedSince(ctx, none, since); err != nil {
			return nil, fmt.Errorf("failed to count recent patients: %w", err)
		}

	case policy.RoleClinicAdmin, policy.RoleBranchAdmin:
		users := policy.ScopeFilter(caller, policy.ResourceUser, policy.FilterOptions{})
		patients := policy.ScopeFilter(caller, policy.ResourcePatient, policy.FilterOptions{})
		invs := policy.ScopeFilter(caller, policy.ResourceInvestigation, policy.FilterOptions{})

		var err error
		if stats.UserCount, err = s.userRepo.Count(ctx, users); err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if stats.PatientCount, err = s.patientRepo.Count(ctx, patients); err != nil {
			return nil, fmt.Errorf("failed to count patients: %w", err)
		}
		if stats.InvestigationCount, err = s.invRepo.Count(ctx, invs); err != nil {
			return nil, fmt.Errorf("failed to count investigations: %w", err)
		}
		if stats.RecentActivity, err = s.patientRepo.CountCreatedSince(ctx, patients, since); err != nil {
			return nil, fmt.Errorf("failed to count recent patients: %w", err)
		}
		if caller.Role == policy.RoleClinicAdmin {
			branches := policy.ScopeFilter(caller, policy.ResourceBranch, policy.FilterOptions{})
			if stats.BranchCount, err = s.branchRepo.Count(ctx, branches); err != nil {
				return nil, fmt.Errorf("failed to count branches: %w", err)
			}
		}

	case policy.RoleDoctor:
		own := policy.ScopeFilter(caller, policy.ResourcePatient, policy.FilterOptions{IncludeOwnerFilter: true})
		ownInvs := policy.ScopeFilter(caller, policy.ResourceInvestigation, policy.FilterOptions{IncludeOwnerFilter: true})

		var err error
		if stats.MyPatientCount, err = s.patientRepo.Count(ctx, own); err != nil {
			return nil, fmt.Errorf("failed to count patients: %w", err)
		}
		if stats.InvestigationCount, err = s.invRepo.Count(ctx, ownInvs); err != nil {
			return nil, fmt.Errorf("failed to count investigations: %w", err)
		}
		if stats.RecentCases, err = s.patientRepo.CountCreatedSince(ctx, own, since); err != nil {
			return nil, fmt.Errorf("failed to count recent patients: %w", err)
		}
		if stats.PendingReports, err = s.invRepo.CountPendingFollowUps(ctx, ownInvs, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to count pending follow-ups: %w", err)
		}
	}

	return stats, nil
}

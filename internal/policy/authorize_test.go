package policy_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	clinic1 = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	clinic2 = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	branch1 = uuid.MustParse("aaaaaaaa-1111-1111-1111-111111111111")
	branch2 = uuid.MustParse("aaaaaaaa-2222-2222-2222-222222222222")
	branch3 = uuid.MustParse("aaaaaaaa-3333-3333-3333-333333333333")
)

func superadmin() policy.Caller {
	return policy.Caller{UserID: uuid.New(), Role: policy.RoleSuperAdmin}
}

func clinicAdmin(clinicID uuid.UUID) policy.Caller {
	return policy.Caller{UserID: uuid.New(), Role: policy.RoleClinicAdmin, ClinicID: clinicID}
}

func branchAdmin(clinicID, branchID uuid.UUID) policy.Caller {
	return policy.Caller{UserID: uuid.New(), Role: policy.RoleBranchAdmin, ClinicID: clinicID, BranchID: branchID}
}

func doctor(clinicID, branchID uuid.UUID) policy.Caller {
	return policy.Caller{UserID: uuid.New(), Role: policy.RoleDoctor, ClinicID: clinicID, BranchID: branchID}
}

func TestSuperAdminAllowedEverything(t *testing.T) {
	caller := superadmin()
	verbs := []policy.Verb{policy.VerbCreate, policy.VerbRead, policy.VerbUpdate, policy.VerbDelete}
	resources := []policy.ResourceType{
		policy.ResourceClinic,
		policy.ResourceBranch,
		policy.ResourceUser,
		policy.ResourcePatient,
		policy.ResourceInvestigation,
	}

	for _, resource := range resources {
		for _, verb := range verbs {
			action := policy.Action{
				Verb:     verb,
				Resource: resource,
				Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic2, BranchID: branch3},
				Proposed: &policy.Proposed{Role: policy.RoleClinicAdmin, ClinicID: clinic2},
			}
			decision := policy.Authorize(caller, action)
			assert.True(t, decision.Allowed, "superadmin denied %s on %s", verb, resource)
		}
	}

	// Even with nil target and proposed.
	decision := policy.Authorize(caller, policy.Action{Verb: policy.VerbDelete, Resource: policy.ResourcePatient})
	assert.True(t, decision.Allowed)
}

func TestUnscopedCallerDeniedEverything(t *testing.T) {
	callers := []policy.Caller{
		{UserID: uuid.New(), Role: policy.RoleClinicAdmin},                   // no clinic
		{UserID: uuid.New(), Role: policy.RoleBranchAdmin, ClinicID: clinic1}, // no branch
		{UserID: uuid.New(), Role: policy.RoleDoctor, BranchID: branch1},      // no clinic
		{UserID: uuid.New(), Role: policy.Role("receptionist")},               // unknown role
		{UserID: uuid.New()}, // no role at all
	}

	for _, caller := range callers {
		decision := policy.Authorize(caller, policy.Action{
			Verb:     policy.VerbRead,
			Resource: policy.ResourcePatient,
			Target:   &policy.Target{ID: uuid.New(), ClinicID: caller.ClinicID, BranchID: caller.BranchID},
		})
		require.False(t, decision.Allowed, "caller %+v should be denied", caller)
		assert.Equal(t, policy.ReasonUnscoped, decision.Reason)
	}
}

func TestAuthorizeIsDeterministic(t *testing.T) {
	caller := branchAdmin(clinic1, branch1)
	action := policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1, CurrentRole: policy.RoleDoctor},
		Proposed: &policy.Proposed{BranchID: branch1, ClinicID: clinic1},
	}

	first := policy.Authorize(caller, action)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, policy.Authorize(caller, action))
	}
}

func TestClinicAccess(t *testing.T) {
	admin := clinicAdmin(clinic1)

	read := func(clinicID uuid.UUID) policy.Decision {
		return policy.Authorize(admin, policy.Action{
			Verb:     policy.VerbRead,
			Resource: policy.ResourceClinic,
			Target:   &policy.Target{ID: clinicID, ClinicID: clinicID},
		})
	}

	assert.True(t, read(clinic1).Allowed)
	assert.False(t, read(clinic2).Allowed)

	// Clinic mutation is superadmin-only regardless of ownership.
	for _, verb := range []policy.Verb{policy.VerbCreate, policy.VerbUpdate, policy.VerbDelete} {
		decision := policy.Authorize(admin, policy.Action{
			Verb:     verb,
			Resource: policy.ResourceClinic,
			Target:   &policy.Target{ID: clinic1, ClinicID: clinic1},
			Proposed: &policy.Proposed{},
		})
		require.False(t, decision.Allowed, "clinicadmin must not %s clinics", verb)
		assert.Equal(t, policy.ReasonForbidden, decision.Reason)
	}

	// Branch-scoped roles cannot read clinic records directly.
	decision := policy.Authorize(doctor(clinic1, branch1), policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourceClinic,
		Target:   &policy.Target{ID: clinic1, ClinicID: clinic1},
	})
	assert.False(t, decision.Allowed)
}

func TestBranchUpdateInOwnClinic(t *testing.T) {
	// Scenario: clinicadmin of C1 renames a branch in C1.
	admin := clinicAdmin(clinic1)
	decision := policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceBranch,
		Target:   &policy.Target{ID: branch1, ClinicID: clinic1},
		Proposed: &policy.Proposed{},
	})
	assert.True(t, decision.Allowed)

	// Same admin, branch owned by another clinic.
	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceBranch,
		Target:   &policy.Target{ID: branch3, ClinicID: clinic2},
		Proposed: &policy.Proposed{},
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, policy.ReasonForbidden, decision.Reason)
}

func TestBranchReassignmentReservedForSuperAdmin(t *testing.T) {
	admin := clinicAdmin(clinic1)
	decision := policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceBranch,
		Target:   &policy.Target{ID: branch1, ClinicID: clinic1},
		Proposed: &policy.Proposed{ClinicID: clinic2},
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, policy.ReasonForbidden, decision.Reason)

	// Restating the current clinic is not a reassignment.
	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceBranch,
		Target:   &policy.Target{ID: branch1, ClinicID: clinic1},
		Proposed: &policy.Proposed{ClinicID: clinic1},
	})
	assert.True(t, decision.Allowed)
}

func TestBranchCreateAndDelete(t *testing.T) {
	admin := clinicAdmin(clinic1)

	decision := policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceBranch,
		Proposed: &policy.Proposed{ClinicID: clinic1},
	})
	assert.True(t, decision.Allowed)

	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceBranch,
		Proposed: &policy.Proposed{ClinicID: clinic2},
	})
	assert.False(t, decision.Allowed)

	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbDelete,
		Resource: policy.ResourceBranch,
		Target:   &policy.Target{ID: branch1, ClinicID: clinic1},
	})
	assert.True(t, decision.Allowed)

	// Branch admins manage nothing at the branch level.
	decision = policy.Authorize(branchAdmin(clinic1, branch1), policy.Action{
		Verb:     policy.VerbDelete,
		Resource: policy.ResourceBranch,
		Target:   &policy.Target{ID: branch1, ClinicID: clinic1},
	})
	assert.False(t, decision.Allowed)
}

func TestBranchRead(t *testing.T) {
	decision := policy.Authorize(branchAdmin(clinic1, branch1), policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourceBranch,
		Target:   &policy.Target{ID: branch1, ClinicID: clinic1},
	})
	assert.True(t, decision.Allowed)

	decision = policy.Authorize(doctor(clinic1, branch1), policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourceBranch,
		Target:   &policy.Target{ID: branch2, ClinicID: clinic1},
	})
	assert.False(t, decision.Allowed, "doctor must not read sibling branches")
}

func TestBranchAdminCannotTouchBranchAdmins(t *testing.T) {
	// Scenario: branchadmin updating another branchadmin in the same branch.
	caller := branchAdmin(clinic1, branch1)
	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1, CurrentRole: policy.RoleBranchAdmin},
		Proposed: &policy.Proposed{},
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, policy.ReasonForbidden, decision.Reason)

	// Doctors in the same branch are fair game.
	decision = policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1, CurrentRole: policy.RoleDoctor},
		Proposed: &policy.Proposed{},
	})
	assert.True(t, decision.Allowed)
}

func TestBranchAdminCreatesDoctor(t *testing.T) {
	// Scenario: branchadmin creating a doctor in its own branch.
	caller := branchAdmin(clinic1, branch1)
	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: &policy.Proposed{Role: policy.RoleDoctor, BranchID: branch1, ClinicID: clinic1},
	})
	assert.True(t, decision.Allowed)

	// Any other role, even branchadmin, is out of reach.
	for _, role := range []policy.Role{policy.RoleBranchAdmin, policy.RoleClinicAdmin, policy.RoleSuperAdmin} {
		decision = policy.Authorize(caller, policy.Action{
			Verb:     policy.VerbCreate,
			Resource: policy.ResourceUser,
			Proposed: &policy.Proposed{Role: role, BranchID: branch1, ClinicID: clinic1},
		})
		require.False(t, decision.Allowed, "branchadmin must not create %s", role)
	}

	// Another branch, even in the same clinic, is out of reach.
	decision = policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: &policy.Proposed{Role: policy.RoleDoctor, BranchID: branch2, ClinicID: clinic1},
	})
	assert.False(t, decision.Allowed)
}

func TestNoPrivilegeEscalation(t *testing.T) {
	admin := clinicAdmin(clinic1)

	for _, role := range []policy.Role{policy.RoleSuperAdmin, policy.RoleClinicAdmin, policy.RoleLegacyAdmin} {
		decision := policy.Authorize(admin, policy.Action{
			Verb:     policy.VerbCreate,
			Resource: policy.ResourceUser,
			Proposed: &policy.Proposed{Role: role, ClinicID: clinic1, BranchID: branch1},
		})
		require.False(t, decision.Allowed, "clinicadmin must not create %s", role)
		assert.Equal(t, policy.ReasonForbidden, decision.Reason)
	}

	// Promotion through update is blocked the same way.
	decision := policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1, CurrentRole: policy.RoleDoctor},
		Proposed: &policy.Proposed{Role: policy.RoleSuperAdmin},
	})
	require.False(t, decision.Allowed)

	// Branch admins cannot change roles at all, not even doctor to doctor's
	// sibling tier.
	decision = policy.Authorize(branchAdmin(clinic1, branch1), policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1, CurrentRole: policy.RoleDoctor},
		Proposed: &policy.Proposed{Role: policy.RoleBranchAdmin, BranchID: branch1, ClinicID: clinic1},
	})
	require.False(t, decision.Allowed)

	// A payload that merely restates the target's current role is not a role
	// change and must not trip the branchadmin restriction.
	decision = policy.Authorize(branchAdmin(clinic1, branch1), policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1, CurrentRole: policy.RoleDoctor},
		Proposed: &policy.Proposed{Role: policy.RoleDoctor, BranchID: branch1, ClinicID: clinic1},
	})
	assert.True(t, decision.Allowed)
}

func TestClinicAdminUserManagement(t *testing.T) {
	admin := clinicAdmin(clinic1)

	decision := policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: &policy.Proposed{Role: policy.RoleBranchAdmin, ClinicID: clinic1, BranchID: branch1},
	})
	assert.True(t, decision.Allowed)

	// Wrong clinic in the payload.
	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: &policy.Proposed{Role: policy.RoleDoctor, ClinicID: clinic2, BranchID: branch3},
	})
	assert.False(t, decision.Allowed)

	// Demoting a branchadmin to doctor within the clinic is allowed.
	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1, CurrentRole: policy.RoleBranchAdmin},
		Proposed: &policy.Proposed{Role: policy.RoleDoctor},
	})
	assert.True(t, decision.Allowed)

	// Deleting a user in another clinic is not.
	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbDelete,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic2, BranchID: branch3, CurrentRole: policy.RoleDoctor},
	})
	assert.False(t, decision.Allowed)
}

func TestTenantConsistency(t *testing.T) {
	admin := clinicAdmin(clinic1)

	// A doctor needs a branch.
	decision := policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: &policy.Proposed{Role: policy.RoleDoctor, ClinicID: clinic1},
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, policy.ReasonInvalidTenantAssignment, decision.Reason)

	// A branch that belongs to a different clinic than the one named.
	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: &policy.Proposed{
			Role:           policy.RoleDoctor,
			ClinicID:       clinic1,
			BranchID:       branch3,
			BranchClinicID: clinic2,
		},
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, policy.ReasonInvalidTenantAssignment, decision.Reason)

	// A consistent branch attachment passes.
	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: &policy.Proposed{
			Role:           policy.RoleDoctor,
			ClinicID:       clinic1,
			BranchID:       branch1,
			BranchClinicID: clinic1,
		},
	})
	assert.True(t, decision.Allowed)

	// A role-less create is an invalid assignment, not a plain denial.
	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: &policy.Proposed{ClinicID: clinic1, BranchID: branch1},
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, policy.ReasonInvalidTenantAssignment, decision.Reason)
}

func TestUpdateConsistencyUsesMergedState(t *testing.T) {
	admin := clinicAdmin(clinic1)
	target := &policy.Target{
		ID:          uuid.New(),
		ClinicID:    clinic1,
		BranchID:    branch1,
		CurrentRole: policy.RoleDoctor,
	}

	// Moving the doctor to a branch in another clinic must be rejected even
	// though the payload leaves clinicId untouched.
	decision := policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   target,
		Proposed: &policy.Proposed{BranchID: branch3, BranchClinicID: clinic2},
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, policy.ReasonInvalidTenantAssignment, decision.Reason)

	// Moving to a sibling branch in the same clinic is fine.
	decision = policy.Authorize(admin, policy.Action{
		Verb:     policy.VerbUpdate,
		Resource: policy.ResourceUser,
		Target:   target,
		Proposed: &policy.Proposed{BranchID: branch2, BranchClinicID: clinic1},
	})
	assert.True(t, decision.Allowed)
}

func TestDoctorSelfAccess(t *testing.T) {
	caller := doctor(clinic1, branch1)

	decision := policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: caller.UserID, ClinicID: clinic1, BranchID: branch1, CurrentRole: policy.RoleDoctor},
	})
	assert.True(t, decision.Allowed)

	// A colleague in the same branch is not visible via direct read.
	decision = policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbRead,
		Resource: policy.ResourceUser,
		Target:   &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1, CurrentRole: policy.RoleDoctor},
	})
	assert.False(t, decision.Allowed)

	// Doctors never manage users.
	decision = policy.Authorize(caller, policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourceUser,
		Proposed: &policy.Proposed{Role: policy.RoleDoctor, ClinicID: clinic1, BranchID: branch1},
	})
	assert.False(t, decision.Allowed)
}

func TestPatientAccess(t *testing.T) {
	target := &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1, OwnerUserID: uuid.New()}

	// Clinic admin reaches every branch of its clinic.
	decision := policy.Authorize(clinicAdmin(clinic1), policy.Action{
		Verb: policy.VerbRead, Resource: policy.ResourcePatient, Target: target,
	})
	assert.True(t, decision.Allowed)

	decision = policy.Authorize(clinicAdmin(clinic2), policy.Action{
		Verb: policy.VerbRead, Resource: policy.ResourcePatient, Target: target,
	})
	assert.False(t, decision.Allowed)

	// Branch roles are confined to their branch.
	decision = policy.Authorize(doctor(clinic1, branch1), policy.Action{
		Verb: policy.VerbUpdate, Resource: policy.ResourcePatient, Target: target,
		Proposed: &policy.Proposed{},
	})
	assert.True(t, decision.Allowed)

	decision = policy.Authorize(doctor(clinic1, branch2), policy.Action{
		Verb: policy.VerbUpdate, Resource: policy.ResourcePatient, Target: target,
		Proposed: &policy.Proposed{},
	})
	assert.False(t, decision.Allowed)
}

func TestPatientCreate(t *testing.T) {
	decision := policy.Authorize(doctor(clinic1, branch1), policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourcePatient,
		Proposed: &policy.Proposed{BranchID: branch1},
	})
	assert.True(t, decision.Allowed)

	// Naming a foreign branch in the payload is denied.
	decision = policy.Authorize(doctor(clinic1, branch1), policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourcePatient,
		Proposed: &policy.Proposed{BranchID: branch2},
	})
	assert.False(t, decision.Allowed)

	// Clinic admins have no branch to anchor the record to.
	decision = policy.Authorize(clinicAdmin(clinic1), policy.Action{
		Verb:     policy.VerbCreate,
		Resource: policy.ResourcePatient,
		Proposed: &policy.Proposed{},
	})
	assert.False(t, decision.Allowed)
}

func TestPatientDeleteLegacyAdminOnly(t *testing.T) {
	target := &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1}

	deniedCallers := []policy.Caller{
		clinicAdmin(clinic1),
		branchAdmin(clinic1, branch1),
		doctor(clinic1, branch1),
	}
	for _, caller := range deniedCallers {
		decision := policy.Authorize(caller, policy.Action{
			Verb: policy.VerbDelete, Resource: policy.ResourcePatient, Target: target,
		})
		require.False(t, decision.Allowed, "%s must not delete patients", caller.Role)
	}

	decision := policy.Authorize(policy.Caller{UserID: uuid.New(), Role: policy.RoleLegacyAdmin}, policy.Action{
		Verb: policy.VerbDelete, Resource: policy.ResourcePatient, Target: target,
	})
	assert.True(t, decision.Allowed)
}

func TestInvestigationDeleteFollowsUpdateScope(t *testing.T) {
	target := &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1}

	decision := policy.Authorize(doctor(clinic1, branch1), policy.Action{
		Verb: policy.VerbDelete, Resource: policy.ResourceInvestigation, Target: target,
	})
	assert.True(t, decision.Allowed)

	decision = policy.Authorize(doctor(clinic1, branch2), policy.Action{
		Verb: policy.VerbDelete, Resource: policy.ResourceInvestigation, Target: target,
	})
	assert.False(t, decision.Allowed)

	decision = policy.Authorize(clinicAdmin(clinic1), policy.Action{
		Verb: policy.VerbDelete, Resource: policy.ResourceInvestigation, Target: target,
	})
	assert.True(t, decision.Allowed)
}

func TestLegacyAdminConfinedToPatientDelete(t *testing.T) {
	caller := policy.Caller{UserID: uuid.New(), Role: policy.RoleLegacyAdmin}
	target := &policy.Target{ID: uuid.New(), ClinicID: clinic1, BranchID: branch1}

	checks := []policy.Action{
		{Verb: policy.VerbRead, Resource: policy.ResourcePatient, Target: target},
		{Verb: policy.VerbUpdate, Resource: policy.ResourcePatient, Target: target, Proposed: &policy.Proposed{}},
		{Verb: policy.VerbRead, Resource: policy.ResourceClinic, Target: target},
		{Verb: policy.VerbCreate, Resource: policy.ResourceUser, Proposed: &policy.Proposed{Role: policy.RoleDoctor, ClinicID: clinic1, BranchID: branch1}},
		{Verb: policy.VerbDelete, Resource: policy.ResourceInvestigation, Target: target},
	}
	for _, action := range checks {
		decision := policy.Authorize(caller, action)
		require.False(t, decision.Allowed, "legacy admin must be denied %s on %s", action.Verb, action.Resource)
	}
}

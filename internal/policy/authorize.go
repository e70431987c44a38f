package policy

import "github.com/google/uuid"

// Authorize decides whether caller may perform action. It never errors:
// malformed input downgrades to the most restrictive decision, with the
// reason reported on the Decision. Resource existence is not checked here;
// callers resolve the target row first and pass its attributes in.
func Authorize(caller Caller, action Action) Decision {
	// Superadmin overrides every rule below.
	if caller.Role == RoleSuperAdmin {
		return allow()
	}

	if !caller.Scoped() {
		return deny(ReasonUnscoped)
	}

	switch action.Resource {
	case ResourceClinic:
		return authorizeClinic(caller, action)
	case ResourceBranch:
		return authorizeBranch(caller, action)
	case ResourceUser:
		return authorizeUser(caller, action)
	case ResourcePatient, ResourceInvestigation:
		return authorizePatientRecord(caller, action)
	}

	return deny(ReasonForbidden)
}

// authorizeClinic: only superadmins mutate clinics. A clinicadmin may read
// its own clinic; everyone else is denied. The zero-branches/zero-users
// precondition on delete is a storage-layer check, not enforced here.
func authorizeClinic(caller Caller, action Action) Decision {
	if action.Verb != VerbRead {
		return deny(ReasonForbidden)
	}
	if caller.Role == RoleClinicAdmin && action.Target != nil && action.Target.ID == caller.ClinicID {
		return allow()
	}
	return deny(ReasonForbidden)
}

func authorizeBranch(caller Caller, action Action) Decision {
	switch action.Verb {
	case VerbRead:
		if action.Target == nil {
			return deny(ReasonForbidden)
		}
		switch caller.Role {
		case RoleClinicAdmin:
			if action.Target.ClinicID == caller.ClinicID {
				return allow()
			}
		case RoleBranchAdmin, RoleDoctor:
			if action.Target.ID == caller.BranchID {
				return allow()
			}
		}
		return deny(ReasonForbidden)

	case VerbCreate:
		if caller.Role != RoleClinicAdmin || action.Proposed == nil {
			return deny(ReasonForbidden)
		}
		if action.Proposed.ClinicID != caller.ClinicID {
			return deny(ReasonForbidden)
		}
		return allow()

	case VerbUpdate:
		if caller.Role != RoleClinicAdmin || action.Target == nil {
			return deny(ReasonForbidden)
		}
		if action.Target.ClinicID != caller.ClinicID {
			return deny(ReasonForbidden)
		}
		// Moving a branch to another clinic is reserved for superadmins,
		// even when the clinicadmin owns the branch.
		if action.Proposed != nil && action.Proposed.ClinicID != uuid.Nil &&
			action.Proposed.ClinicID != action.Target.ClinicID {
			return deny(ReasonForbidden)
		}
		return allow()

	case VerbDelete:
		if caller.Role != RoleClinicAdmin || action.Target == nil {
			return deny(ReasonForbidden)
		}
		if action.Target.ClinicID != caller.ClinicID {
			return deny(ReasonForbidden)
		}
		return allow()
	}

	return deny(ReasonForbidden)
}

func authorizeUser(caller Caller, action Action) Decision {
	switch action.Verb {
	case VerbRead:
		if action.Target == nil {
			return deny(ReasonForbidden)
		}
		switch caller.Role {
		case RoleClinicAdmin:
			if action.Target.ClinicID == caller.ClinicID {
				return allow()
			}
		case RoleBranchAdmin:
			if action.Target.BranchID == caller.BranchID && action.Target.ClinicID == caller.ClinicID {
				return allow()
			}
		case RoleDoctor:
			if action.Target.ID == caller.UserID {
				return allow()
			}
		}
		return deny(ReasonForbidden)

	case VerbCreate:
		return authorizeUserCreate(caller, action.Proposed)

	case VerbUpdate, VerbDelete:
		return authorizeUserMutation(caller, action)
	}

	return deny(ReasonForbidden)
}

func authorizeUserCreate(caller Caller, proposed *Proposed) Decision {
	if proposed == nil {
		return deny(ReasonForbidden)
	}

	switch caller.Role {
	case RoleClinicAdmin:
		if proposed.ClinicID != caller.ClinicID {
			return deny(ReasonForbidden)
		}
		if proposed.Role != RoleBranchAdmin && proposed.Role != RoleDoctor {
			return deny(ReasonForbidden)
		}
	case RoleBranchAdmin:
		if proposed.BranchID != caller.BranchID || proposed.ClinicID != caller.ClinicID {
			return deny(ReasonForbidden)
		}
		// Branch admins staff their branch with doctors, nothing else.
		if proposed.Role != RoleDoctor {
			return deny(ReasonForbidden)
		}
	default:
		return deny(ReasonForbidden)
	}

	return checkTenantConsistency(proposed.Role, proposed)
}

func authorizeUserMutation(caller Caller, action Action) Decision {
	target := action.Target
	if target == nil {
		return deny(ReasonForbidden)
	}

	switch caller.Role {
	case RoleClinicAdmin:
		if target.ClinicID != caller.ClinicID {
			return deny(ReasonForbidden)
		}
	case RoleBranchAdmin:
		if target.BranchID != caller.BranchID || target.ClinicID != caller.ClinicID {
			return deny(ReasonForbidden)
		}
		// Branch admins may only manage doctors; touching another admin,
		// of either tier, is denied outright.
		if target.CurrentRole != RoleDoctor {
			return deny(ReasonForbidden)
		}
	default:
		return deny(ReasonForbidden)
	}

	if action.Verb == VerbDelete {
		return allow()
	}

	// A payload that restates the target's current role is not a role
	// change; only an actual transition is vetted here.
	proposed := action.Proposed
	if proposed != nil && proposed.Role != "" && proposed.Role != target.CurrentRole {
		switch caller.Role {
		case RoleClinicAdmin:
			if proposed.Role != RoleBranchAdmin && proposed.Role != RoleDoctor {
				return deny(ReasonForbidden)
			}
		case RoleBranchAdmin:
			// Branch admins cannot change roles at all.
			return deny(ReasonForbidden)
		}
	}

	if proposed != nil {
		effective := target.CurrentRole
		if proposed.Role != "" {
			effective = proposed.Role
		}
		merged := mergeProposed(target, proposed)
		return checkTenantConsistency(effective, merged)
	}

	return allow()
}

// mergeProposed overlays the payload's tenant fields on the target's current
// ones, so consistency is checked against the post-update state.
func mergeProposed(target *Target, proposed *Proposed) *Proposed {
	merged := *proposed
	if merged.ClinicID == uuid.Nil {
		merged.ClinicID = target.ClinicID
	}
	if merged.BranchID == uuid.Nil {
		merged.BranchID = target.BranchID
	}
	return &merged
}

// checkTenantConsistency enforces the structural requirements a role places
// on its tenant attachments: branch-bound roles need a branch, clinic-bound
// roles need a clinic, and a branch known to belong to a different clinic
// than the one given is rejected. The branch's owning clinic is resolved by
// the caller and passed in as BranchClinicID; when unknown it is skipped.
func checkTenantConsistency(role Role, proposed *Proposed) Decision {
	switch role {
	case RoleBranchAdmin, RoleDoctor:
		if proposed.BranchID == uuid.Nil || proposed.ClinicID == uuid.Nil {
			return deny(ReasonInvalidTenantAssignment)
		}
	case RoleClinicAdmin:
		if proposed.ClinicID == uuid.Nil {
			return deny(ReasonInvalidTenantAssignment)
		}
	case "":
		// A user cannot be created without a role.
		return deny(ReasonInvalidTenantAssignment)
	}

	if proposed.ClinicID != uuid.Nil && proposed.BranchClinicID != uuid.Nil &&
		proposed.BranchClinicID != proposed.ClinicID {
		return deny(ReasonInvalidTenantAssignment)
	}

	return allow()
}

// authorizePatientRecord covers patients and investigations. Ownership is
// transitive through the owning branch: investigation targets carry their
// patient's branch and clinic.
func authorizePatientRecord(caller Caller, action Action) Decision {
	switch action.Verb {
	case VerbRead, VerbUpdate:
		if action.Target == nil {
			return deny(ReasonForbidden)
		}
		switch caller.Role {
		case RoleClinicAdmin:
			if action.Target.ClinicID == caller.ClinicID {
				return allow()
			}
		case RoleBranchAdmin, RoleDoctor:
			if action.Target.BranchID == caller.BranchID {
				return allow()
			}
		}
		return deny(ReasonForbidden)

	case VerbCreate:
		// A patient record is anchored to its creator's branch, so only
		// branch-attached roles can create one. A payload naming a branch
		// other than the caller's own is denied.
		switch caller.Role {
		case RoleBranchAdmin, RoleDoctor:
			if action.Proposed != nil && action.Proposed.BranchID != uuid.Nil &&
				action.Proposed.BranchID != caller.BranchID {
				return deny(ReasonForbidden)
			}
			return allow()
		}
		return deny(ReasonForbidden)

	case VerbDelete:
		if action.Resource == ResourcePatient {
			// Patient deletion is gated on the legacy admin role. See the
			// design notes for how this coexists with the tenant tiers.
			if caller.Role == RoleLegacyAdmin {
				return allow()
			}
			return deny(ReasonForbidden)
		}
		// Investigation deletion follows the same scope as update.
		if action.Target == nil {
			return deny(ReasonForbidden)
		}
		switch caller.Role {
		case RoleClinicAdmin:
			if action.Target.ClinicID == caller.ClinicID {
				return allow()
			}
		case RoleBranchAdmin, RoleDoctor:
			if action.Target.BranchID == caller.BranchID {
				return allow()
			}
		}
		return deny(ReasonForbidden)
	}

	return deny(ReasonForbidden)
}

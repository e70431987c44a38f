package policy

import "github.com/google/uuid"

// Field names a column a Filter constrains. FieldBranchClinicID is indirect:
// the clinic reached through the resource's owning branch. The storage layer
// translates it into the appropriate join or subquery per resource.
type Field string

const (
	FieldID             Field = "id"
	FieldClinicID       Field = "clinic_id"
	FieldBranchID       Field = "branch_id"
	FieldUserID         Field = "user_id"
	FieldBranchClinicID Field = "branch_clinic_id"
)

// Filter is a declarative row-visibility constraint: every listed field must
// equal its value. An empty conditions map with DenyAll unset means no
// restriction. The engine never executes a query; the storage layer owns the
// translation into predicates.
type Filter struct {
	Conditions map[Field]uuid.UUID
	DenyAll    bool
}

// Unrestricted returns a filter that admits every row.
func Unrestricted() Filter {
	return Filter{}
}

// denyAll returns a filter that admits no rows. Used as the defensive
// fallback for malformed or unrecognized callers.
func denyAll() Filter {
	return Filter{DenyAll: true}
}

func where(fields map[Field]uuid.UUID) Filter {
	return Filter{Conditions: fields}
}

// IsUnrestricted reports whether the filter admits every row.
func (f Filter) IsUnrestricted() bool {
	return !f.DenyAll && len(f.Conditions) == 0
}

// Matches reports whether a row with the given tenant attributes is admitted.
// Used by tests and by in-process checks; list queries go through the storage
// layer's translation instead.
func (f Filter) Matches(row Target) bool {
	if f.DenyAll {
		return false
	}
	for field, want := range f.Conditions {
		var got uuid.UUID
		switch field {
		case FieldID:
			got = row.ID
		case FieldClinicID, FieldBranchClinicID:
			got = row.ClinicID
		case FieldBranchID:
			got = row.BranchID
		case FieldUserID:
			got = row.OwnerUserID
		}
		if got != want {
			return false
		}
	}
	return true
}

// FilterOptions selects between the two doctor list scopes present in the
// product: records the doctor created (owner filter) versus every record in
// the doctor's branch.
type FilterOptions struct {
	IncludeOwnerFilter bool
}

// ScopeFilter returns the visibility filter for caller over resource. The
// rows it admits are exactly the rows Authorize allows a read on, except the
// doctor owner filter, which deliberately narrows to own-created records.
func ScopeFilter(caller Caller, resource ResourceType, opts FilterOptions) Filter {
	if caller.Role == RoleSuperAdmin {
		return Unrestricted()
	}
	if !caller.Scoped() {
		return denyAll()
	}

	switch resource {
	case ResourceClinic:
		if caller.Role == RoleClinicAdmin {
			return where(map[Field]uuid.UUID{FieldID: caller.ClinicID})
		}

	case ResourceBranch:
		switch caller.Role {
		case RoleClinicAdmin:
			return where(map[Field]uuid.UUID{FieldClinicID: caller.ClinicID})
		case RoleBranchAdmin, RoleDoctor:
			return where(map[Field]uuid.UUID{FieldID: caller.BranchID})
		}

	case ResourceUser:
		switch caller.Role {
		case RoleClinicAdmin:
			return where(map[Field]uuid.UUID{FieldClinicID: caller.ClinicID})
		case RoleBranchAdmin:
			return where(map[Field]uuid.UUID{
				FieldBranchID: caller.BranchID,
				FieldClinicID: caller.ClinicID,
			})
		case RoleDoctor:
			return where(map[Field]uuid.UUID{FieldID: caller.UserID})
		}

	case ResourcePatient, ResourceInvestigation:
		switch caller.Role {
		case RoleClinicAdmin:
			return where(map[Field]uuid.UUID{FieldBranchClinicID: caller.ClinicID})
		case RoleBranchAdmin:
			return where(map[Field]uuid.UUID{FieldBranchID: caller.BranchID})
		case RoleDoctor:
			if opts.IncludeOwnerFilter {
				return where(map[Field]uuid.UUID{FieldUserID: caller.UserID})
			}
			return where(map[Field]uuid.UUID{FieldBranchID: caller.BranchID})
		}
	}

	return denyAll()
}

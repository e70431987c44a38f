// Package policy centralizes tenant-scoped authorization decisions for the
// clinic management service. Handlers and services call Authorize before
// touching storage and ScopeFilter to constrain list queries, instead of
// performing ad-hoc role checks.
//
// The package is pure: no I/O, no side effects, identical inputs always
// produce identical outputs. It is safe for concurrent use without locking.
package policy

import "github.com/google/uuid"

// Role identifies a caller's tier in the tenant hierarchy.
type Role string

const (
	RoleSuperAdmin  Role = "superadmin"
	RoleClinicAdmin Role = "clinicadmin"
	RoleBranchAdmin Role = "branchadmin"
	RoleDoctor      Role = "doctor"

	// RoleLegacyAdmin predates the four-tier tenant model. It survives only
	// as the gate for patient deletion and carries no tenant visibility.
	RoleLegacyAdmin Role = "admin"
)

// Verb is the intended operation on a resource.
type Verb string

const (
	VerbCreate Verb = "create"
	VerbRead   Verb = "read"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// ResourceType identifies the kind of resource an action targets.
type ResourceType string

const (
	ResourceClinic        ResourceType = "clinic"
	ResourceBranch        ResourceType = "branch"
	ResourceUser          ResourceType = "user"
	ResourcePatient       ResourceType = "patient"
	ResourceInvestigation ResourceType = "investigation"
)

// ErrorKind classifies why a Decision denied an action.
type ErrorKind string

const (
	// ReasonForbidden means the caller's role or tenant scope does not
	// permit the verb on this resource.
	ReasonForbidden ErrorKind = "forbidden"

	// ReasonInvalidTenantAssignment means a proposed role/clinic/branch
	// combination violates the tenant-consistency invariant.
	ReasonInvalidTenantAssignment ErrorKind = "invalid_tenant_assignment"

	// ReasonUnscoped means the caller identity itself is malformed for its
	// role (e.g. a clinicadmin with no clinic). Treated as full denial.
	ReasonUnscoped ErrorKind = "unscoped"
)

// Caller is the identity a request acts as. Identity resolution (session or
// token verification, isActive enforcement) happens upstream; inactive users
// must never reach this package.
type Caller struct {
	UserID   uuid.UUID
	Role     Role
	ClinicID uuid.UUID // uuid.Nil when the role has no clinic attachment
	BranchID uuid.UUID // uuid.Nil when the role has no branch attachment
}

// Scoped reports whether the caller carries the tenant attachments its role
// requires.
func (c Caller) Scoped() bool {
	switch c.Role {
	case RoleSuperAdmin, RoleLegacyAdmin:
		return true
	case RoleClinicAdmin:
		return c.ClinicID != uuid.Nil
	case RoleBranchAdmin, RoleDoctor:
		return c.ClinicID != uuid.Nil && c.BranchID != uuid.Nil
	}
	return false
}

// Target carries the tenant-relevant attributes of an existing resource. For
// patients and investigations, ClinicID and BranchID are the resolved owning
// branch and its clinic; OwnerUserID is the creating doctor.
type Target struct {
	ID          uuid.UUID
	ClinicID    uuid.UUID
	BranchID    uuid.UUID
	OwnerUserID uuid.UUID
	CurrentRole Role // user targets only
}

// Proposed carries the policy-relevant fields of a create/update payload.
// BranchClinicID is the owning clinic of BranchID, resolved by the caller
// before invoking the engine; uuid.Nil when unknown.
type Proposed struct {
	Role           Role // empty when the payload does not set a role
	ClinicID       uuid.UUID
	BranchID       uuid.UUID
	BranchClinicID uuid.UUID
}

// Action describes an intended operation. Target is nil for create; Proposed
// is nil for read and delete.
type Action struct {
	Verb     Verb
	Resource ResourceType
	Target   *Target
	Proposed *Proposed
}

// Decision is the outcome of an authorization check. Reason is set only when
// Allowed is false.
type Decision struct {
	Allowed bool
	Reason  ErrorKind
}

func allow() Decision { return Decision{Allowed: true} }

func deny(kind ErrorKind) Decision { return Decision{Reason: kind} }

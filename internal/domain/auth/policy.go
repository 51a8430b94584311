package auth

// Principal is the per-request identity resolved from a verified credential.
// It is immutable for the lifetime of the request.
type Principal struct {
	ID          string
	Email       string
	Role        Role
	Category    Category
	Department  string
	Designation string
	SessionID   string
}

// Resource carries the ownership facts a policy decision may need: who the
// row belongs to and who manages that subject.
type Resource struct {
	OwnerID   string
	ManagerID string
}

// Policy is the reusable three-tier access rule: roles in FullAccess see
// everything, TeamRole sees rows whose subject reports to the principal, and
// AllowSelf lets anyone act on their own rows. Super Admin passes every
// policy unless NoImplicitSuperAdmin is set; policies that opt out must name
// Super Admin in FullAccess explicitly.
type Policy struct {
	FullAccess           []Role
	TeamRole             Role
	AllowSelf            bool
	NoImplicitSuperAdmin bool
}

// ScopeKind tells list queries how to filter rows for a principal.
type ScopeKind string

const (
	ScopeAll  ScopeKind = "all"
	ScopeTeam ScopeKind = "team"
	ScopeSelf ScopeKind = "self"
	ScopeNone ScopeKind = "none"
)

type Scope struct {
	Kind ScopeKind
	// UserID is the manager for ScopeTeam and the subject for ScopeSelf.
	UserID string
}

// CheckAccess gates a single resource. A zero principal is unauthenticated;
// a known principal failing every tier is forbidden. The two outcomes stay
// distinct sentinel errors because callers map them to different statuses.
func CheckAccess(principal Principal, policy Policy, resource Resource) error {
	if principal.ID == "" {
		return ErrUnauthenticated
	}
	if principal.Role == RoleSuperAdmin && !policy.NoImplicitSuperAdmin {
		return nil
	}
	if HasRole(principal.Role, policy.FullAccess) {
		return nil
	}
	if policy.TeamRole != "" && principal.Role == policy.TeamRole && resource.ManagerID != "" && resource.ManagerID == principal.ID {
		return nil
	}
	if policy.AllowSelf && resource.OwnerID != "" && resource.OwnerID == principal.ID {
		return nil
	}
	return ErrForbidden
}

// CheckRouteAccess gates a route before any resource is loaded: a tier match
// alone passes. Per-record narrowing (ownership, direct reports) stays with
// the handler, which knows the resource.
func CheckRouteAccess(principal Principal, policy Policy) error {
	if principal.ID == "" {
		return ErrUnauthenticated
	}
	if ScopeFor(principal, policy).Kind == ScopeNone {
		return ErrForbidden
	}
	return nil
}

// ScopeFor is the list-query counterpart of CheckAccess: it reduces the same
// three tiers to a row filter so every listing endpoint shares one shape.
func ScopeFor(principal Principal, policy Policy) Scope {
	if principal.ID == "" {
		return Scope{Kind: ScopeNone}
	}
	if principal.Role == RoleSuperAdmin && !policy.NoImplicitSuperAdmin {
		return Scope{Kind: ScopeAll}
	}
	if HasRole(principal.Role, policy.FullAccess) {
		return Scope{Kind: ScopeAll}
	}
	if policy.TeamRole != "" && principal.Role == policy.TeamRole {
		return Scope{Kind: ScopeTeam, UserID: principal.ID}
	}
	if policy.AllowSelf {
		return Scope{Kind: ScopeSelf, UserID: principal.ID}
	}
	return Scope{Kind: ScopeNone}
}

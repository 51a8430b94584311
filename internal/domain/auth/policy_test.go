package auth

import (
	"errors"
	"testing"
)

var recordPolicy = Policy{
	FullAccess: []Role{RoleAdmin, RoleHR},
	TeamRole:   RoleManager,
	AllowSelf:  true,
}

func TestCheckAccessFullAccessRoles(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleHR} {
		principal := Principal{ID: "u1", Role: role}
		if err := CheckAccess(principal, recordPolicy, Resource{OwnerID: "other"}); err != nil {
			t.Fatalf("role %s should have full access, got %v", role, err)
		}
	}
}

func TestCheckAccessSuperAdminImplicit(t *testing.T) {
	principal := Principal{ID: "u1", Role: RoleSuperAdmin}
	if err := CheckAccess(principal, recordPolicy, Resource{OwnerID: "other"}); err != nil {
		t.Fatalf("super admin should pass implicitly, got %v", err)
	}

	strict := recordPolicy
	strict.NoImplicitSuperAdmin = true
	strict.AllowSelf = false
	if err := CheckAccess(principal, strict, Resource{OwnerID: "other"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("opted-out policy should forbid super admin, got %v", err)
	}
}

func TestCheckAccessManagerTeamScope(t *testing.T) {
	manager := Principal{ID: "mgr1", Role: RoleManager}
	if err := CheckAccess(manager, recordPolicy, Resource{OwnerID: "emp1", ManagerID: "mgr1"}); err != nil {
		t.Fatalf("manager should reach direct report's resource, got %v", err)
	}
	if err := CheckAccess(manager, recordPolicy, Resource{OwnerID: "emp2", ManagerID: "mgr2"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("manager outside the team should be forbidden, got %v", err)
	}
}

func TestCheckAccessSelfOwnership(t *testing.T) {
	employee := Principal{ID: "emp1", Role: RoleBackendDev}
	if err := CheckAccess(employee, recordPolicy, Resource{OwnerID: "emp1"}); err != nil {
		t.Fatalf("owner should reach own resource, got %v", err)
	}
	if err := CheckAccess(employee, recordPolicy, Resource{OwnerID: "emp2"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner should be forbidden, got %v", err)
	}
}

func TestCheckAccessUnauthenticatedDistinctFromForbidden(t *testing.T) {
	err := CheckAccess(Principal{}, recordPolicy, Resource{OwnerID: "emp1"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatal("unauthenticated must not satisfy ErrForbidden")
	}
}

func TestCheckAccessForbidsRolesOutsideEveryTier(t *testing.T) {
	for _, role := range []Role{RoleIntern, RoleLogistics, RoleDigitalMarketing, RoleFrontendDev} {
		principal := Principal{ID: "u9", Role: role}
		if err := CheckAccess(principal, recordPolicy, Resource{OwnerID: "someone-else"}); !errors.Is(err, ErrForbidden) {
			t.Fatalf("role %s should be forbidden, got %v", role, err)
		}
	}
}

func TestCheckRouteAccessTeamTierPassesWithoutResource(t *testing.T) {
	policy := Policy{FullAccess: AdminTier, TeamRole: RoleManager}

	if err := CheckRouteAccess(Principal{ID: "mgr1", Role: RoleManager}, policy); err != nil {
		t.Fatalf("manager should pass the route guard before any resource exists, got %v", err)
	}
	if err := CheckRouteAccess(Principal{ID: "u1", Role: RoleAdmin}, policy); err != nil {
		t.Fatalf("admin should pass, got %v", err)
	}
	if err := CheckRouteAccess(Principal{ID: "emp1", Role: RoleEmployee}, policy); !errors.Is(err, ErrForbidden) {
		t.Fatalf("employee should be forbidden, got %v", err)
	}
	if err := CheckRouteAccess(Principal{}, policy); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous should be unauthenticated, got %v", err)
	}
}

func TestScopeForThreeTiers(t *testing.T) {
	if got := ScopeFor(Principal{ID: "u1", Role: RoleHR}, recordPolicy); got.Kind != ScopeAll {
		t.Fatalf("HR should get ScopeAll, got %+v", got)
	}
	if got := ScopeFor(Principal{ID: "mgr1", Role: RoleManager}, recordPolicy); got.Kind != ScopeTeam || got.UserID != "mgr1" {
		t.Fatalf("manager should get team scope keyed by own id, got %+v", got)
	}
	if got := ScopeFor(Principal{ID: "emp1", Role: RoleIntern}, recordPolicy); got.Kind != ScopeSelf || got.UserID != "emp1" {
		t.Fatalf("intern should get self scope, got %+v", got)
	}
	if got := ScopeFor(Principal{}, recordPolicy); got.Kind != ScopeNone {
		t.Fatalf("anonymous should get ScopeNone, got %+v", got)
	}
}

func TestScopeForWithoutSelfTier(t *testing.T) {
	policy := Policy{FullAccess: AdminTier, TeamRole: RoleManager}
	if got := ScopeFor(Principal{ID: "emp1", Role: RoleEmployee}, policy); got.Kind != ScopeNone {
		t.Fatalf("employee should get ScopeNone when self tier disabled, got %+v", got)
	}
}

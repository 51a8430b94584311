package auth

import "testing"

func TestHasRoleIsPlainMembership(t *testing.T) {
	allowed := []Role{RoleAdmin, RoleHR}
	if !HasRole(RoleHR, allowed) {
		t.Fatal("HR should be a member of the allow-list")
	}
	if HasRole(RoleSuperAdmin, allowed) {
		t.Fatal("HasRole must not grant Super Admin an implicit wildcard")
	}
	if HasRole(RoleEmployee, nil) {
		t.Fatal("empty allow-list must match nothing")
	}
}

func TestCategoryResolution(t *testing.T) {
	cases := map[Role]Category{
		RoleSuperAdmin:       CategoryAdmin,
		RoleHR:               CategoryAdmin,
		RoleManager:          CategoryManagement,
		RoleLogistics:        CategoryOperations,
		RoleDesignContent:    CategoryCreative,
		RoleDigitalMarketing: CategoryCreative,
		RoleBackendDev:       CategoryDeveloper,
		RoleAIMLDev:          CategoryDeveloper,
		RoleIntern:           CategoryGeneral,
	}
	for role, want := range cases {
		if got := CategoryOf(role); got != want {
			t.Fatalf("category of %s: want %s, got %s", role, want, got)
		}
	}
	if got := CategoryOf(Role("Contractor")); got != CategoryGeneral {
		t.Fatalf("unknown role should default to general, got %s", got)
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleAppDev) {
		t.Fatal("App Developer is in the catalog")
	}
	if ValidRole(Role("Wizard")) {
		t.Fatal("unknown role must be invalid")
	}
}

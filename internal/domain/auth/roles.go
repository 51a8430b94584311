package auth

// Role is the closed catalog of account roles. Authorization decisions only
// ever compare against these constants; free-form role strings are rejected
// at principal load.
type Role string

const (
	RoleSuperAdmin       Role = "Super Admin"
	RoleAdmin            Role = "Admin"
	RoleHR               Role = "HR"
	RoleManager          Role = "Manager"
	RoleLogistics        Role = "Logistics"
	RoleDigitalMarketing Role = "Digital Marketing"
	RoleDesignContent    Role = "Design & Content Team"
	RoleBackendDev       Role = "Backend Developer"
	RoleFrontendDev      Role = "Frontend Developer"
	RoleAIMLDev          Role = "AI/ML Developer"
	RoleAppDev           Role = "App Developer"
	RoleEmployee         Role = "Employee"
	RoleIntern           Role = "Intern"
)

// Category groups roles for checks that used to match on role-name
// substrings. It is resolved once from the catalog, never re-derived.
type Category string

const (
	CategoryAdmin      Category = "admin"
	CategoryManagement Category = "management"
	CategoryOperations Category = "operations"
	CategoryCreative   Category = "creative"
	CategoryDeveloper  Category = "developer"
	CategoryGeneral    Category = "general"
)

var roleCategories = map[Role]Category{
	RoleSuperAdmin:       CategoryAdmin,
	RoleAdmin:            CategoryAdmin,
	RoleHR:               CategoryAdmin,
	RoleManager:          CategoryManagement,
	RoleLogistics:        CategoryOperations,
	RoleDigitalMarketing: CategoryCreative,
	RoleDesignContent:    CategoryCreative,
	RoleBackendDev:       CategoryDeveloper,
	RoleFrontendDev:      CategoryDeveloper,
	RoleAIMLDev:          CategoryDeveloper,
	RoleAppDev:           CategoryDeveloper,
	RoleEmployee:         CategoryGeneral,
	RoleIntern:           CategoryGeneral,
}

// AdminTier is the full-access set reused by most resource policies.
var AdminTier = []Role{RoleSuperAdmin, RoleAdmin, RoleHR}

func ValidRole(role Role) bool {
	_, ok := roleCategories[role]
	return ok
}

func CategoryOf(role Role) Category {
	if category, ok := roleCategories[role]; ok {
		return category
	}
	return CategoryGeneral
}

// HasRole reports whether role is in allowed. Plain set membership: Super
// Admin gets no implicit pass here, that is the policy guard's job.
func HasRole(role Role, allowed []Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

func Roles() []Role {
	out := make([]Role, 0, len(roleCategories))
	for role := range roleCategories {
		out = append(out, role)
	}
	return out
}

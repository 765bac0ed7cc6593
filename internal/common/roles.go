package common

// Roles known to the platform.
const (
	RoleCandidate    = "candidate"
	RoleRecruiter    = "recruiter"
	RoleCompanyAdmin = "company_admin"
	RoleSuperAdmin   = "super_admin"
)

// IsValidRole reports whether role is one of the platform roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleCandidate, RoleRecruiter, RoleCompanyAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsHiringRole reports whether the role acts on behalf of a company or the marketplace
// (searches candidates, spends credits, posts jobs).
func IsHiringRole(role string) bool {
	return role == RoleRecruiter || role == RoleCompanyAdmin || role == RoleSuperAdmin
}

package auth

import "facultyportal/pkg/domain"

// CanMutate reports whether a role may create or delete portal data.
// Students (and unknown roles) are read-only.
func CanMutate(role domain.Role) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleFaculty:
		return true
	default:
		return false
	}
}

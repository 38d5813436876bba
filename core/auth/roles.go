package auth

import "strings"

// Roles. The set is closed; INSTITUTION and INSTITUTION_ADMIN are aliases of
// each other for authorization purposes (older accounts carry the former).
const (
	RoleStudent          = "STUDENT"
	RoleInstitution      = "INSTITUTION"
	RoleInstitutionAdmin = "INSTITUTION_ADMIN"
	RoleAdmin            = "ADMIN"
)

var (
	InstitutionRoles = []string{RoleInstitution, RoleInstitutionAdmin}
	AllRoles         = []string{RoleStudent, RoleInstitution, RoleInstitutionAdmin, RoleAdmin}
)

// NormalizeRole maps externally supplied role values to their canonical form.
// Roles are matched case-insensitively everywhere.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

func IsInstitutionRole(role string) bool {
	role = NormalizeRole(role)
	for _, r := range InstitutionRoles {
		if role == r {
			return true
		}
	}
	return false
}

func IsKnownRole(role string) bool {
	role = NormalizeRole(role)
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

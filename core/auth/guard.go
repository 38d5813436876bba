package auth

import "github.com/pkg/errors"

var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrForbidden       = errors.New("permission denied")
)

// Authorize checks that the identity's role is one of the required roles.
// Matching is case-insensitive with OR semantics; an empty required set only
// asserts that a role is present.
func Authorize(ident Identity, requiredRoles ...string) error {
	role := NormalizeRole(ident.Role)
	if role == "" {
		return ErrUnauthenticated
	}
	if len(requiredRoles) == 0 {
		return nil
	}
	for _, required := range requiredRoles {
		if role == NormalizeRole(required) {
			return nil
		}
	}
	return ErrForbidden
}

// RequireInstitution is the tenant guard layered over Authorize for
// institution endpoints: only the aliased institution roles pass, regardless
// of what the generic role check allowed.
func RequireInstitution(ident Identity) error {
	role := NormalizeRole(ident.Role)
	if role == "" {
		return ErrUnauthenticated
	}
	if !IsInstitutionRole(role) {
		return ErrForbidden
	}
	return nil
}

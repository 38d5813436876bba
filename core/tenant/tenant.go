// Package tenant derives the institution scope that restricts every storage
// lookup to the caller's own institution.
package tenant

import (
	"github.com/volatiletech/null/v8"

	"github.com/philip-ks/eduforge/core/auth"
)

// Scope restricts row lookups to a single institution. The zero Scope is
// unrestricted; repositories must AND a restricted Scope into every query
// against an institution-scoped table.
type Scope struct {
	InstitutionID null.String
}

// ScopeFor builds the scope for a resolved identity. An identity without an
// institution id yields an unrestricted scope; the role guards decide
// beforehand whether that identity may reach a cross-tenant endpoint at all,
// so this is not an escalation path.
func ScopeFor(ident auth.Identity) Scope {
	if ident.InstitutionID.Valid && ident.InstitutionID.String != "" {
		return Scope{InstitutionID: ident.InstitutionID}
	}
	return Scope{}
}

func (s Scope) Restricted() bool {
	return s.InstitutionID.Valid
}

// Matches reports whether a row carrying institutionID is visible under s.
// Used by in-memory repositories; SQL repositories express the same predicate
// as a WHERE clause.
func (s Scope) Matches(institutionID null.String) bool {
	if !s.Restricted() {
		return true
	}
	return institutionID.Valid && institutionID.String == s.InstitutionID.String
}

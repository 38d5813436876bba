package core

import "strings"

// CleanString trims surrounding whitespace in `s` and optionally lowers it.
// User-supplied identifiers (emails, request titles, phone numbers) pass
// through here before validation so equality checks stay case/space-proof.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

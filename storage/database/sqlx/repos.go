// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"fmt"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/tenant"
)

// Listings default to newest first.
var (
	studentOrdering = core.DBOrdering{Field: "created_at"}
	requestOrdering = core.DBOrdering{Field: "submitted_at"}
)

// scopeQuery ANDs a restricted tenant scope into query. The table being
// queried must expose an institution_id column.
func scopeQuery(query string, args []interface{}, scope tenant.Scope) (string, []interface{}) {
	if !scope.Restricted() {
		return query, args
	}
	args = append(args, scope.InstitutionID)
	return query + fmt.Sprintf(" AND institution_id = $%d", len(args)), args
}

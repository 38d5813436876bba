// Package request implements student service requests (certificates,
// corrections, complaints) and their sequential display ids.
package request

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/philip-ks/eduforge/core"
)

// Request statuses. PENDING is a legacy alias still found in old rows and
// old clients; it reads back as OPEN via ParseStatus.
const (
	StatusOpen       = "OPEN"
	StatusInProgress = "IN_PROGRESS"
	StatusClosed     = "CLOSED"

	DefaultStatus = StatusOpen

	legacyStatusPending = "PENDING"
)

// ParseStatus normalizes a raw status string. Unrecognized values are
// reported with ok == false and fall back to the default.
func ParseStatus(raw string) (status string, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case StatusOpen, legacyStatusPending:
		return StatusOpen, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusClosed:
		return StatusClosed, true
	case "":
		return DefaultStatus, true
	default:
		return DefaultStatus, false
	}
}

type Request struct {
	ID            string      `db:"id" json:"id"`
	DisplayID     string      `db:"display_id" json:"display_id"`
	StudentID     string      `db:"student_id" json:"student_id"`
	InstitutionID null.String `db:"institution_id" json:"institution_id"`
	Title         string      `db:"title" json:"title"`
	Description   null.String `db:"description" json:"description"`
	Status        string      `db:"status" json:"status"`
	SubmittedAt   time.Time   `db:"submitted_at" json:"submitted_at"`
}

type NewRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

func (nr *NewRequest) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = strings.TrimSpace(nr.Description)
	return core.Validate.Struct(nr)
}

// QueryFilter narrows institution-side request listings.
type QueryFilter struct {
	Status string
	Limit  int
}

// Clean normalizes the filter. Absent and unrecognized statuses both resolve
// to OPEN; listings always carry a concrete status.
func (f QueryFilter) Clean() QueryFilter {
	f.Status, _ = ParseStatus(f.Status)
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 200
	}
	return f
}

package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/philip-ks/eduforge/core"
)

type Student struct {
	ID            string      `db:"id" json:"id"`
	UserID        string      `db:"user_id" json:"user_id"`
	InstitutionID null.String `db:"institution_id" json:"institution_id"`
	DisplayID     string      `db:"display_id" json:"display_id"`
	FullName      string      `db:"full_name" json:"full_name"`
	ProgramID     string      `db:"program_id" json:"program_id"`
	Semester      int         `db:"semester" json:"semester"`
}

type Program struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Enrollment is a student's enrollment row joined with its course offering.
type Enrollment struct {
	OfferingID  string `db:"offering_id" json:"-"`
	CourseID    string `db:"course_id" json:"course_id"`
	Code        string `db:"code" json:"code"`
	Title       string `db:"title" json:"title"`
	Credits     int    `db:"credits" json:"credits"`
	Semester    string `db:"semester" json:"semester"`
	FacultyName string `db:"faculty_name" json:"faculty_name"`
}

// Attendance mark statuses
const (
	MarkPresent = "PRESENT"
	MarkAbsent  = "ABSENT"
	MarkLate    = "LATE"
)

// Attendance eligibility
const (
	// EligibilityThreshold is the attendance percentage at and above which a
	// student remains eligible for a course.
	EligibilityThreshold = 75

	AttendanceEligible = "ELIGIBLE"
	AttendanceWarning  = "WARNING"
)

// AttendanceSummary is derived per course on every query; it is never stored.
type AttendanceSummary struct {
	CourseID string `json:"course_id"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Present  int    `json:"present"`
	Total    int    `json:"total"`
	Percent  int    `json:"percent"`
	Status   string `json:"status"`
}

// Fee account statuses
const (
	FeePaid          = "PAID"
	FeeUnpaid        = "UNPAID"
	FeePartiallyPaid = "PARTIALLY_PAID"
)

type (
	FeeCharge struct {
		ID     string `db:"id" json:"id"`
		Label  string `db:"label" json:"label"`
		Amount int64  `db:"amount" json:"amount"` // minor units
	}

	FeePayment struct {
		ID     string    `db:"id" json:"id"`
		Amount int64     `db:"amount" json:"amount"` // minor units
		PaidAt time.Time `db:"paid_at" json:"paid_at"`
	}

	FeeAccount struct {
		ID        string       `db:"id" json:"id"`
		StudentID string       `db:"student_id" json:"student_id"`
		Currency  string       `db:"currency" json:"currency"`
		Charges   []FeeCharge  `db:"-" json:"charges"`
		Payments  []FeePayment `db:"-" json:"payments"`
	}

	// FeeSummary is derived from the account's charges and payments on every
	// query; the status is never stored independently of the arithmetic.
	FeeSummary struct {
		StudentID    string `json:"student_id"`
		Currency     string `json:"currency"`
		TotalPayable int64  `json:"total_payable"`
		TotalPaid    int64  `json:"total_paid"`
		Due          int64  `json:"due"`
		Status       string `json:"status"`
	}
)

// Library
const LibraryIssueOpen = "ISSUED"

type LibraryIssue struct {
	ID         string    `db:"id" json:"issue_id"`
	BookID     string    `db:"book_id" json:"book_id"`
	BookTitle  string    `db:"book_title" json:"book_title"`
	BookAuthor string    `db:"book_author" json:"book_author"`
	DueDate    time.Time `db:"due_date" json:"due_date"`
	Status     string    `db:"status" json:"status"`
}

// Settings
const (
	ThemeSystem = "SYSTEM"
	ThemeLight  = "LIGHT"
	ThemeDark   = "DARK"

	VisibilityCampusOnly = "CAMPUS_ONLY"
	VisibilityPublic     = "PUBLIC"
	VisibilityPrivate    = "PRIVATE"
)

type Settings struct {
	StudentID            string `db:"student_id" json:"-"`
	Theme                string `db:"theme" json:"theme"`
	NotificationsEnabled bool   `db:"notifications_enabled" json:"notifications"`
	Language             string `db:"language" json:"language"`
	ProfileVisibility    string `db:"profile_visibility" json:"profile_visibility"`
}

// DefaultSettings are applied when a student has no stored settings yet.
func DefaultSettings(studentID string) Settings {
	return Settings{
		StudentID:            studentID,
		Theme:                ThemeSystem,
		NotificationsEnabled: true,
		Language:             "en",
		ProfileVisibility:    VisibilityCampusOnly,
	}
}

// UpdateSettings defines what settings may be changed; nil fields are left as-is.
type UpdateSettings struct {
	Theme             *string `json:"theme" validate:"omitempty,oneof=SYSTEM LIGHT DARK"`
	Notifications     *bool   `json:"notifications"`
	Language          *string `json:"language" validate:"omitempty,min=2,max=10"`
	ProfileVisibility *string `json:"profile_visibility" validate:"omitempty,oneof=CAMPUS_ONLY PUBLIC PRIVATE"`
}

func (us *UpdateSettings) Validate() error { return core.Validate.Struct(us) }

// Apply merges the update into existing settings.
func (us *UpdateSettings) Apply(settings Settings) Settings {
	if us.Theme != nil {
		settings.Theme = *us.Theme
	}
	if us.Notifications != nil {
		settings.NotificationsEnabled = *us.Notifications
	}
	if us.Language != nil {
		settings.Language = *us.Language
	}
	if us.ProfileVisibility != nil {
		settings.ProfileVisibility = *us.ProfileVisibility
	}
	return settings
}

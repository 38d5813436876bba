package student

import "math"

// Derived-state computations. These are pure functions over already-fetched
// rows; nothing here is cached or persisted, so a summary can never drift
// from the transactional records it is computed from.

// attendancePercent rounds present/total to a whole percentage. A course with
// no sessions yet counts as 0, not a division fault.
func attendancePercent(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// attendanceStatus applies the eligibility threshold; exactly 75% qualifies.
func attendanceStatus(percent int) string {
	if percent >= EligibilityThreshold {
		return AttendanceEligible
	}
	return AttendanceWarning
}

func summarizeAttendance(enr Enrollment, present, total int) AttendanceSummary {
	percent := attendancePercent(present, total)
	return AttendanceSummary{
		CourseID: enr.CourseID,
		Code:     enr.Code,
		Title:    enr.Title,
		Present:  present,
		Total:    total,
		Percent:  percent,
		Status:   attendanceStatus(percent),
	}
}

// summarizeFees derives the fee standing of an account. due == 0 means PAID
// even when nothing was ever paid (a zero-charge account is settled, not
// delinquent); only then does paid == 0 mean UNPAID.
func summarizeFees(acct FeeAccount) FeeSummary {
	var payable, paid int64
	for _, charge := range acct.Charges {
		payable += charge.Amount
	}
	for _, payment := range acct.Payments {
		paid += payment.Amount
	}

	due := payable - paid
	if due < 0 {
		due = 0
	}

	var status string
	switch {
	case due == 0:
		status = FeePaid
	case paid == 0:
		status = FeeUnpaid
	default:
		status = FeePartiallyPaid
	}

	return FeeSummary{
		StudentID:    acct.StudentID,
		Currency:     acct.Currency,
		TotalPayable: payable,
		TotalPaid:    paid,
		Due:          due,
		Status:       status,
	}
}

package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/student"
)

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var stu student.Student
	err := repo.db.GetContext(ctx, &stu, `SELECT * FROM students WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	return stu, errors.Wrap(err, "getting student by id")
}

func (repo *studentRepository) GetStudentByUserID(ctx context.Context, userID string) (student.Student, error) {
	var stu student.Student
	err := repo.db.GetContext(ctx, &stu, `SELECT * FROM students WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	return stu, errors.Wrap(err, "getting student by user id")
}

func (repo *studentRepository) GetProgram(ctx context.Context, id string) (student.Program, error) {
	var prog student.Program
	err := repo.db.GetContext(ctx, &prog, `SELECT * FROM programs WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return student.Program{}, student.ErrNotFound
	}
	return prog, errors.Wrap(err, "getting program")
}

func (repo *studentRepository) QueryEnrollments(ctx context.Context, studentID string) ([]student.Enrollment, error) {
	const query = `
SELECT o.id AS offering_id, c.id AS course_id, c.code, c.title, c.credits, o.semester,
       COALESCE(f.full_name, '') AS faculty_name
FROM enrollments e
JOIN offerings o ON o.id = e.offering_id
JOIN courses c ON c.id = o.course_id
LEFT JOIN faculty f ON f.id = o.faculty_id
WHERE e.student_id = $1
ORDER BY e.enrolled_at DESC`

	var enrollments []student.Enrollment
	err := repo.db.SelectContext(ctx, &enrollments, query, studentID)
	return enrollments, errors.Wrap(err, "querying enrollments")
}

func (repo *studentRepository) CountSessions(ctx context.Context, offeringID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM attendance_sessions WHERE offering_id = $1`, offeringID)
	return count, errors.Wrap(err, "counting sessions")
}

func (repo *studentRepository) CountPresentMarks(ctx context.Context, studentID, offeringID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM attendance_marks m
JOIN attendance_sessions s ON s.id = m.session_id
WHERE m.student_id = $1 AND s.offering_id = $2 AND m.status = $3`

	var count int
	err := repo.db.GetContext(ctx, &count, query, studentID, offeringID, student.MarkPresent)
	return count, errors.Wrap(err, "counting present marks")
}

func (repo *studentRepository) GetFeeAccount(ctx context.Context, studentID string) (student.FeeAccount, error) {
	var acct student.FeeAccount
	err := repo.db.GetContext(ctx, &acct, `SELECT * FROM fee_accounts WHERE student_id = $1`, studentID)
	if err == sql.ErrNoRows {
		return student.FeeAccount{}, student.ErrFeeAccountNotFound
	}
	if err != nil {
		return student.FeeAccount{}, errors.Wrap(err, "getting fee account")
	}

	err = repo.db.SelectContext(ctx, &acct.Charges,
		`SELECT id, label, amount FROM fee_charges WHERE account_id = $1`, acct.ID)
	if err != nil {
		return student.FeeAccount{}, errors.Wrap(err, "querying fee charges")
	}
	err = repo.db.SelectContext(ctx, &acct.Payments,
		`SELECT id, amount, paid_at FROM fee_payments WHERE account_id = $1 ORDER BY paid_at`, acct.ID)
	if err != nil {
		return student.FeeAccount{}, errors.Wrap(err, "querying fee payments")
	}
	return acct, nil
}

func (repo *studentRepository) QueryOpenLibraryIssues(ctx context.Context, studentID string, limit int) ([]student.LibraryIssue, error) {
	query := `
SELECT i.id, b.id AS book_id, b.title AS book_title, b.author AS book_author, i.due_date, i.status
FROM library_issues i
JOIN books b ON b.id = i.book_id
WHERE i.student_id = $1 AND i.status = $2
ORDER BY i.due_date`
	args := []interface{}{studentID, student.LibraryIssueOpen}
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $3`
	}

	var issues []student.LibraryIssue
	err := repo.db.SelectContext(ctx, &issues, query, args...)
	return issues, errors.Wrap(err, "querying library issues")
}

func (repo *studentRepository) GetSettings(ctx context.Context, studentID string) (student.Settings, error) {
	var settings student.Settings
	err := repo.db.GetContext(ctx, &settings,
		`SELECT * FROM student_settings WHERE student_id = $1`, studentID)
	if err == sql.ErrNoRows {
		return student.Settings{}, student.ErrNotFound
	}
	return settings, errors.Wrap(err, "getting settings")
}

func (repo *studentRepository) UpsertSettings(ctx context.Context, settings student.Settings) (student.Settings, error) {
	const query = `
INSERT INTO student_settings (student_id, theme, notifications_enabled, language, profile_visibility)
VALUES (:student_id, :theme, :notifications_enabled, :language, :profile_visibility)
ON CONFLICT (student_id) DO UPDATE
SET theme = EXCLUDED.theme, notifications_enabled = EXCLUDED.notifications_enabled,
    language = EXCLUDED.language, profile_visibility = EXCLUDED.profile_visibility`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, query, settings); err != nil {
		return student.Settings{}, errors.Wrap(err, "upserting settings")
	}
	return settings, nil
}

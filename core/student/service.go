package student

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound           = errors.New("student not found")
	ErrFeeAccountNotFound = errors.New("fee account not found")
)

type Repository interface {
	GetStudentByID(ctx context.Context, id string) (Student, error)
	GetStudentByUserID(ctx context.Context, userID string) (Student, error)
	GetProgram(ctx context.Context, id string) (Program, error)
	// QueryEnrollments lists a student's enrollments (joined with offering and
	// course), newest first.
	QueryEnrollments(ctx context.Context, studentID string) ([]Enrollment, error)
	// CountSessions counts the attendance sessions held for an offering.
	CountSessions(ctx context.Context, offeringID string) (int, error)
	// CountPresentMarks counts the student's PRESENT marks across the
	// offering's sessions.
	CountPresentMarks(ctx context.Context, studentID, offeringID string) (int, error)
	// GetFeeAccount loads the student's fee account with its charges and payments.
	GetFeeAccount(ctx context.Context, studentID string) (FeeAccount, error)
	// QueryOpenLibraryIssues lists un-returned issues ordered by due date.
	// limit <= 0 means no limit.
	QueryOpenLibraryIssues(ctx context.Context, studentID string, limit int) ([]LibraryIssue, error)
	GetSettings(ctx context.Context, studentID string) (Settings, error)
	UpsertSettings(ctx context.Context, settings Settings) (Settings, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// ByUserID resolves the student record behind an authenticated account.
func (svc *Service) ByUserID(ctx context.Context, userID string) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

func (svc *Service) Program(ctx context.Context, id string) (Program, error) {
	return svc.repo.GetProgram(ctx, id)
}

func (svc *Service) Courses(ctx context.Context, studentID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, studentID)
}

// SummarizeAttendance recomputes per-course attendance standing from the raw
// session and mark counts. Missing rows are zero counts, not errors.
func (svc *Service) SummarizeAttendance(ctx context.Context, studentID string) ([]AttendanceSummary, error) {
	enrollments, err := svc.repo.QueryEnrollments(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}

	summaries := make([]AttendanceSummary, 0, len(enrollments))
	for _, enr := range enrollments {
		total, err := svc.repo.CountSessions(ctx, enr.OfferingID)
		if err != nil {
			return nil, errors.Wrap(err, "counting sessions")
		}
		present, err := svc.repo.CountPresentMarks(ctx, studentID, enr.OfferingID)
		if err != nil {
			return nil, errors.Wrap(err, "counting present marks")
		}
		summaries = append(summaries, summarizeAttendance(enr, present, total))
	}
	return summaries, nil
}

// SummarizeFees recomputes the fee standing from the account's charges and
// payments. Only a missing account is an error.
func (svc *Service) SummarizeFees(ctx context.Context, studentID string) (FeeSummary, error) {
	acct, err := svc.repo.GetFeeAccount(ctx, studentID)
	if err != nil {
		return FeeSummary{}, err
	}
	return summarizeFees(acct), nil
}

func (svc *Service) LibraryIssues(ctx context.Context, studentID string, limit int) ([]LibraryIssue, error) {
	return svc.repo.QueryOpenLibraryIssues(ctx, studentID, limit)
}

// GetSettings returns the student's stored settings, or the defaults when
// none were saved yet.
func (svc *Service) GetSettings(ctx context.Context, studentID string) (Settings, error) {
	settings, err := svc.repo.GetSettings(ctx, studentID)
	if errors.Cause(err) == ErrNotFound {
		return DefaultSettings(studentID), nil
	}
	return settings, err
}

func (svc *Service) UpdateSettings(ctx context.Context, studentID string, data UpdateSettings) (Settings, error) {
	settings, err := svc.GetSettings(ctx, studentID)
	if err != nil {
		return Settings{}, err
	}
	return svc.repo.UpsertSettings(ctx, data.Apply(settings))
}

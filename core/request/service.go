package request

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/sequence"
	"github.com/philip-ks/eduforge/core/student"
	"github.com/philip-ks/eduforge/core/tenant"
)

var ErrNotFound = errors.New("request not found")

type Repository interface {
	CreateRequest(ctx context.Context, req Request) error
	GetRequestByID(ctx context.Context, scope tenant.Scope, id string) (Request, error)
	// QueryRequestsByStudent lists a student's own requests, newest first.
	QueryRequestsByStudent(ctx context.Context, studentID string) ([]Request, error)
	// QueryRequests lists requests visible within scope, newest first,
	// optionally narrowed to one status.
	QueryRequests(ctx context.Context, scope tenant.Scope, filter QueryFilter) ([]Request, error)
	CountRequests(ctx context.Context, scope tenant.Scope, status string) (int, error)
	UpdateRequestStatus(ctx context.Context, scope tenant.Scope, id, status string) (Request, error)
}

type Service struct {
	repo Repository
	seq  *sequence.Generator

	nowFunc func() time.Time // tests
}

func NewService(repo Repository, seq *sequence.Generator) *Service {
	return &Service{repo: repo, seq: seq, nowFunc: time.Now}
}

// Create submits a request on behalf of a student. The display id is
// allocated before the insert; a failed insert leaves a gap in the sequence.
func (svc *Service) Create(ctx context.Context, stu student.Student, nr NewRequest) (Request, error) {
	if err := nr.Validate(); err != nil {
		return Request{}, err
	}

	displayID, err := svc.seq.NextDisplayID(ctx, sequence.RequestKey)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		ID:            uuid.NewString(),
		DisplayID:     displayID,
		StudentID:     stu.ID,
		InstitutionID: stu.InstitutionID,
		Title:         nr.Title,
		Status:        DefaultStatus,
		SubmittedAt:   svc.nowFunc(),
	}
	if nr.Description != "" {
		req.Description.SetValid(nr.Description)
	}

	if err := svc.repo.CreateRequest(ctx, req); err != nil {
		return Request{}, errors.Wrap(err, "creating request")
	}
	return req, nil
}

func (svc *Service) GetByID(ctx context.Context, scope tenant.Scope, id string) (Request, error) {
	return svc.repo.GetRequestByID(ctx, scope, id)
}

func (svc *Service) ByStudent(ctx context.Context, studentID string) ([]Request, error) {
	return svc.repo.QueryRequestsByStudent(ctx, studentID)
}

func (svc *Service) Query(ctx context.Context, scope tenant.Scope, filter QueryFilter) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, scope, filter.Clean())
}

func (svc *Service) Count(ctx context.Context, scope tenant.Scope, status string) (int, error) {
	if status != "" {
		status, _ = ParseStatus(status)
	}
	return svc.repo.CountRequests(ctx, scope, status)
}

// UpdateStatus moves a request to a new status. The raw status is parsed
// first so legacy PENDING writes land as OPEN.
func (svc *Service) UpdateStatus(ctx context.Context, scope tenant.Scope, id, rawStatus string) (Request, error) {
	status, ok := ParseStatus(rawStatus)
	if !ok {
		return Request{}, core.NewValidationError(
			errors.New("invalid status"),
			core.FieldError{Field: "status", Error: "must be one of OPEN, IN_PROGRESS, CLOSED"},
		)
	}
	return svc.repo.UpdateRequestStatus(ctx, scope, id, status)
}

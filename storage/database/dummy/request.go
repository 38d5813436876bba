package dummydb

import (
	"context"
	"sort"

	"github.com/philip-ks/eduforge/core/request"
	"github.com/philip-ks/eduforge/core/tenant"
)

type requestRepository struct {
	db *requestTable
}

var _ request.Repository = (*requestRepository)(nil) // interface compliance check

func NewRequestRepository(db *DB) request.Repository {
	return &requestRepository{db: db.request}
}

func (repo *requestRepository) query() []request.Request {
	reqs := make([]request.Request, 0, len(repo.db.table))
	for _, req := range repo.db.table {
		reqs = append(reqs, *req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].SubmittedAt.After(reqs[j].SubmittedAt) })
	return reqs
}

func (repo *requestRepository) CreateRequest(ctx context.Context, req request.Request) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[req.ID] = &req
	return nil
}

func (repo *requestRepository) GetRequestByID(ctx context.Context, scope tenant.Scope, id string) (request.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if req, ok := repo.db.table[id]; ok && scope.Matches(req.InstitutionID) {
		return *req, nil
	}
	return request.Request{}, request.ErrNotFound
}

func (repo *requestRepository) QueryRequestsByStudent(ctx context.Context, studentID string) ([]request.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var reqs []request.Request
	for _, req := range repo.query() {
		if req.StudentID == studentID {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

func (repo *requestRepository) QueryRequests(ctx context.Context, scope tenant.Scope, filter request.QueryFilter) ([]request.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var reqs []request.Request
	for _, req := range repo.query() {
		if !scope.Matches(req.InstitutionID) {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		reqs = append(reqs, req)
	}
	if filter.Limit > 0 && len(reqs) > filter.Limit {
		reqs = reqs[:filter.Limit]
	}
	return reqs, nil
}

func (repo *requestRepository) CountRequests(ctx context.Context, scope tenant.Scope, status string) (int, error) {
	reqs, err := repo.QueryRequests(ctx, scope, request.QueryFilter{Status: status})
	return len(reqs), err
}

func (repo *requestRepository) UpdateRequestStatus(ctx context.Context, scope tenant.Scope, id, status string) (request.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	req, ok := repo.db.table[id]
	if !ok || !scope.Matches(req.InstitutionID) {
		return request.Request{}, request.ErrNotFound
	}
	req.Status = status
	return *req, nil
}
